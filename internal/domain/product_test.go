package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		name     string
		stock    int
		minStock int
		want     StockStatus
	}{
		{"zero stock is out", 0, 5, StockStatusOut},
		{"negative stock is out", -3, 5, StockStatusOut},
		{"at threshold is low", 5, 5, StockStatusLow},
		{"below threshold is low", 3, 5, StockStatusLow},
		{"above threshold is in stock", 6, 5, StockStatusIn},
		{"zero threshold, positive stock", 1, 0, StockStatusIn},
		{"zero stock, zero threshold", 0, 0, StockStatusOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyStock(tt.stock, tt.minStock); got != tt.want {
				t.Errorf("ClassifyStock(%d, %d) = %s, want %s", tt.stock, tt.minStock, got, tt.want)
			}
		})
	}
}

func TestProperty_ClassifyStockIsTotalAndConsistent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("classification matches the threshold definition", prop.ForAll(
		func(stock int, minStock int) bool {
			status := ClassifyStock(stock, minStock)
			switch {
			case stock <= 0:
				return status == StockStatusOut
			case stock <= minStock:
				return status == StockStatusLow
			default:
				return status == StockStatusIn
			}
		},
		gen.IntRange(-1000, 1000),
		gen.IntRange(0, 1000),
	))

	properties.Property("adding stock never worsens the classification", prop.ForAll(
		func(stock int, minStock int, added int) bool {
			rank := map[StockStatus]int{StockStatusOut: 0, StockStatusLow: 1, StockStatusIn: 2}
			before := ClassifyStock(stock, minStock)
			after := ClassifyStock(stock+added, minStock)
			return rank[after] >= rank[before]
		},
		gen.IntRange(-100, 1000),
		gen.IntRange(0, 100),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
