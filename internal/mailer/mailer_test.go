package mailer

import (
	"strings"
	"testing"
	"time"

	"stockroom/internal/domain"

	"github.com/shopspring/decimal"
)

func sampleProposal() DraftProposal {
	return DraftProposal{
		DraftID:       "3f1c9a2e",
		SupplierName:  "Fresh Farms",
		SupplierEmail: "orders@freshfarms.test",
		SenderName:    "Alice",
		CreatedAt:     time.Date(2026, time.March, 9, 10, 30, 0, 0, time.UTC),
		Items: []domain.DraftItemDetail{
			{ProductName: "Wheat Flour", Quantity: 12, Price: decimal.NewFromInt(3)},
			{ProductName: "Sugar", Quantity: 5, Price: decimal.NewFromInt(2)},
		},
	}
}

func TestTextBody_ListsEveryItem(t *testing.T) {
	body := textBody(sampleProposal())

	for _, want := range []string{"Fresh Farms", "Alice", "Wheat Flour: 12", "Sugar: 5", "3f1c9a2e"} {
		if !strings.Contains(body, want) {
			t.Errorf("text body missing %q", want)
		}
	}
}

func TestHTMLBody_RendersItemRows(t *testing.T) {
	body := htmlBody(sampleProposal())

	for _, want := range []string{
		"<td>Wheat Flour</td><td>12</td>",
		"<td>Sugar</td><td>5</td>",
		"<strong>Fresh Farms</strong>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("html body missing %q", want)
		}
	}
}

func TestSendDraftProposal_RejectsInvalidAddresses(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "localhost", Port: 2525, From: "not-an-address"})

	err := m.SendDraftProposal(t.Context(), sampleProposal())
	if err == nil {
		t.Fatal("expected error for invalid sender address")
	}
}
