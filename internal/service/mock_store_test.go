package service

import (
	"context"
	"strings"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/mailer"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory Store used by the service tests. ExecTx snapshots
// the whole state up front and restores it when fn fails, mirroring the
// rollback behavior of the SQL store.
type memStore struct {
	products      map[uuid.UUID]*domain.Product
	suppliers     map[uuid.UUID]*domain.Supplier
	users         map[uuid.UUID]*domain.User
	customers     map[uuid.UUID]*domain.Customer
	drafts        map[uuid.UUID]*domain.PurchaseDraft
	draftItems    map[uuid.UUID][]domain.DraftItem
	purchases     map[uuid.UUID]*domain.Purchase
	purchaseItems map[uuid.UUID][]domain.PurchaseItem
	sales         map[uuid.UUID]*domain.Sale
	saleItems     map[uuid.UUID][]domain.SaleItem
}

func newMemStore() *memStore {
	return &memStore{
		products:      make(map[uuid.UUID]*domain.Product),
		suppliers:     make(map[uuid.UUID]*domain.Supplier),
		users:         make(map[uuid.UUID]*domain.User),
		customers:     make(map[uuid.UUID]*domain.Customer),
		drafts:        make(map[uuid.UUID]*domain.PurchaseDraft),
		draftItems:    make(map[uuid.UUID][]domain.DraftItem),
		purchases:     make(map[uuid.UUID]*domain.Purchase),
		purchaseItems: make(map[uuid.UUID][]domain.PurchaseItem),
		sales:         make(map[uuid.UUID]*domain.Sale),
		saleItems:     make(map[uuid.UUID][]domain.SaleItem),
	}
}

func (m *memStore) addProduct(name string, price decimal.Decimal, stock, minStock int) uuid.UUID {
	id := uuid.New()
	m.products[id] = &domain.Product{
		ID:          id,
		Name:        name,
		Price:       price,
		Stock:       stock,
		MinStock:    minStock,
		StockStatus: domain.ClassifyStock(stock, minStock),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	return id
}

func (m *memStore) addSupplier(name, email string) uuid.UUID {
	id := uuid.New()
	m.suppliers[id] = &domain.Supplier{ID: id, Name: name, Email: email}
	return id
}

func (m *memStore) addUser(username string) uuid.UUID {
	id := uuid.New()
	m.users[id] = &domain.User{ID: id, Username: username, Role: "admin"}
	return id
}

func (m *memStore) snapshot() *memStore {
	s := newMemStore()
	for id, p := range m.products {
		cp := *p
		s.products[id] = &cp
	}
	for id, sup := range m.suppliers {
		cp := *sup
		s.suppliers[id] = &cp
	}
	for id, u := range m.users {
		cp := *u
		s.users[id] = &cp
	}
	for id, c := range m.customers {
		cp := *c
		s.customers[id] = &cp
	}
	for id, d := range m.drafts {
		cp := *d
		s.drafts[id] = &cp
	}
	for id, items := range m.draftItems {
		s.draftItems[id] = append([]domain.DraftItem(nil), items...)
	}
	for id, p := range m.purchases {
		cp := *p
		s.purchases[id] = &cp
	}
	for id, items := range m.purchaseItems {
		s.purchaseItems[id] = append([]domain.PurchaseItem(nil), items...)
	}
	for id, sale := range m.sales {
		cp := *sale
		s.sales[id] = &cp
	}
	for id, items := range m.saleItems {
		s.saleItems[id] = append([]domain.SaleItem(nil), items...)
	}
	return s
}

func (m *memStore) restore(s *memStore) {
	m.products = s.products
	m.suppliers = s.suppliers
	m.users = s.users
	m.customers = s.customers
	m.drafts = s.drafts
	m.draftItems = s.draftItems
	m.purchases = s.purchases
	m.purchaseItems = s.purchaseItems
	m.sales = s.sales
	m.saleItems = s.saleItems
}

func (m *memStore) Products() repository.ProductRepository   { return (*memProducts)(m) }
func (m *memStore) Suppliers() repository.SupplierRepository { return (*memSuppliers)(m) }
func (m *memStore) Customers() repository.CustomerRepository { return (*memCustomers)(m) }
func (m *memStore) Drafts() repository.DraftRepository       { return (*memDrafts)(m) }
func (m *memStore) Purchases() repository.PurchaseRepository { return (*memPurchases)(m) }
func (m *memStore) Sales() repository.SaleRepository         { return (*memSales)(m) }

func (m *memStore) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memProducts memStore

func (m *memProducts) Create(ctx context.Context, product *domain.Product) error {
	cp := *product
	m.products[product.ID] = &cp
	return nil
}

func (m *memProducts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok || p.DeletedAt != nil {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	p, ok := m.products[id]
	if !ok || p.DeletedAt != nil {
		return repository.ErrProductNotFound
	}
	p.Stock += qty
	p.StockStatus = domain.ClassifyStock(p.Stock, p.MinStock)
	return nil
}

func (m *memProducts) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	p, ok := m.products[id]
	if !ok || p.DeletedAt != nil {
		return repository.ErrProductNotFound
	}
	if p.Stock < qty {
		return repository.ErrInsufficientStock
	}
	p.Stock -= qty
	p.StockStatus = domain.ClassifyStock(p.Stock, p.MinStock)
	return nil
}

func (m *memProducts) Search(ctx context.Context, query string, limit int) ([]domain.ProductRef, error) {
	var refs []domain.ProductRef
	for _, p := range m.products {
		if p.DeletedAt != nil {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			refs = append(refs, domain.ProductRef{ID: p.ID, Name: p.Name, Price: p.Price})
		}
		if len(refs) >= limit {
			break
		}
	}
	return refs, nil
}

type memSuppliers memStore

func (m *memSuppliers) FindByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	s, ok := m.suppliers[id]
	if !ok || s.DeletedAt != nil {
		return nil, repository.ErrSupplierNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSuppliers) List(ctx context.Context) ([]domain.Supplier, error) {
	var out []domain.Supplier
	for _, s := range m.suppliers {
		if s.DeletedAt == nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

type memCustomers memStore

func (m *memCustomers) Create(ctx context.Context, customer *domain.Customer) error {
	cp := *customer
	m.customers[customer.ID] = &cp
	return nil
}

func (m *memCustomers) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	for _, c := range m.customers {
		if c.Phone == phone && c.DeletedAt == nil {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

type memDrafts memStore

func (m *memDrafts) Create(ctx context.Context, draft *domain.PurchaseDraft) error {
	cp := *draft
	m.drafts[draft.ID] = &cp
	return nil
}

func (m *memDrafts) FindByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseDraft, error) {
	d, ok := m.drafts[id]
	if !ok || d.DeletedAt != nil {
		return nil, repository.ErrDraftNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDrafts) detail(d *domain.PurchaseDraft) domain.DraftDetail {
	detail := domain.DraftDetail{PurchaseDraft: *d}
	if s, ok := m.suppliers[d.SupplierID]; ok {
		detail.SupplierName = s.Name
		detail.SupplierEmail = s.Email
		detail.SupplierPhone = s.Phone
	}
	if u, ok := m.users[d.CreatedBy]; ok {
		detail.CreatedByName = u.Username
	}
	for _, item := range m.draftItems[d.ID] {
		line := domain.DraftItemDetail{ProductID: item.ProductID, Quantity: item.Quantity}
		if p, ok := m.products[item.ProductID]; ok {
			line.ProductName = p.Name
			line.Price = p.Price
		}
		detail.Items = append(detail.Items, line)
	}
	return detail
}

func (m *memDrafts) FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.DraftDetail, error) {
	d, ok := m.drafts[id]
	if !ok || d.DeletedAt != nil {
		return nil, repository.ErrDraftNotFound
	}
	detail := m.detail(d)
	return &detail, nil
}

func (m *memDrafts) List(ctx context.Context, statuses ...domain.DraftStatus) ([]domain.DraftDetail, error) {
	var out []domain.DraftDetail
	for _, d := range m.drafts {
		if d.DeletedAt != nil {
			continue
		}
		for _, status := range statuses {
			if d.Status == status {
				out = append(out, m.detail(d))
				break
			}
		}
	}
	return out, nil
}

func (m *memDrafts) InsertItems(ctx context.Context, draftID uuid.UUID, items []domain.DraftItem) error {
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		m.draftItems[draftID] = append(m.draftItems[draftID], item)
	}
	return nil
}

func (m *memDrafts) DeleteItems(ctx context.Context, draftID uuid.UUID) error {
	delete(m.draftItems, draftID)
	return nil
}

func (m *memDrafts) ListItems(ctx context.Context, draftID uuid.UUID) ([]domain.DraftItem, error) {
	return append([]domain.DraftItem(nil), m.draftItems[draftID]...), nil
}

func (m *memDrafts) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.DraftStatus) error {
	d, ok := m.drafts[id]
	if !ok || d.DeletedAt != nil {
		return repository.ErrDraftNotFound
	}
	if d.Status != from {
		return repository.ErrDraftStateConflict
	}
	d.Status = to
	return nil
}

func (m *memDrafts) LinkPurchase(ctx context.Context, draftID, purchaseID uuid.UUID) error {
	d, ok := m.drafts[draftID]
	if !ok {
		return repository.ErrDraftNotFound
	}
	d.PurchaseID = &purchaseID
	return nil
}

func (m *memDrafts) SoftDelete(ctx context.Context, id uuid.UUID) error {
	d, ok := m.drafts[id]
	if !ok || d.DeletedAt != nil {
		return repository.ErrDraftNotFound
	}
	if d.Status != domain.DraftStatusDraft {
		return repository.ErrDraftStateConflict
	}
	now := time.Now()
	d.DeletedAt = &now
	return nil
}

type memPurchases memStore

func (m *memPurchases) Create(ctx context.Context, purchase *domain.Purchase) error {
	cp := *purchase
	m.purchases[purchase.ID] = &cp
	return nil
}

func (m *memPurchases) FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseDetail, error) {
	p, ok := m.purchases[id]
	if !ok || p.DeletedAt != nil {
		return nil, repository.ErrPurchaseNotFound
	}
	detail := &domain.PurchaseDetail{Purchase: *p}
	if s, ok := m.suppliers[p.SupplierID]; ok {
		detail.SupplierName = s.Name
	}
	if u, ok := m.users[p.CreatedBy]; ok {
		detail.CreatedByName = u.Username
	}
	for _, item := range m.purchaseItems[id] {
		line := domain.PurchaseItemDetail{PurchaseItem: item}
		if prod, ok := m.products[item.ProductID]; ok {
			line.ProductName = prod.Name
		}
		detail.Items = append(detail.Items, line)
	}
	return detail, nil
}

func (m *memPurchases) InsertItems(ctx context.Context, purchaseID uuid.UUID, items []domain.PurchaseItem) error {
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		m.purchaseItems[purchaseID] = append(m.purchaseItems[purchaseID], item)
	}
	return nil
}

func (m *memPurchases) UpdateItemPrice(ctx context.Context, purchaseID, productID uuid.UUID, price decimal.Decimal) error {
	items := m.purchaseItems[purchaseID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Price = price
			return nil
		}
	}
	return repository.ErrPurchaseItemNotFound
}

func (m *memPurchases) SumItems(ctx context.Context, purchaseID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range m.purchaseItems[purchaseID] {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

func (m *memPurchases) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal, priceUpdated bool) error {
	p, ok := m.purchases[id]
	if !ok {
		return repository.ErrPurchaseNotFound
	}
	p.TotalAmount = total
	p.PriceUpdated = priceUpdated
	return nil
}

type memSales memStore

func (m *memSales) Create(ctx context.Context, sale *domain.Sale) error {
	cp := *sale
	m.sales[sale.ID] = &cp
	return nil
}

func (m *memSales) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	s, ok := m.sales[id]
	if !ok || s.DeletedAt != nil {
		return nil, repository.ErrSaleNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSales) FindDetailByID(ctx context.Context, id uuid.UUID) (*domain.SaleDetail, error) {
	s, ok := m.sales[id]
	if !ok || s.DeletedAt != nil {
		return nil, repository.ErrSaleNotFound
	}
	detail := &domain.SaleDetail{Sale: *s}
	if c, ok := m.customers[s.CustomerID]; ok {
		detail.CustomerName = c.Name
		detail.CustomerPhone = c.Phone
		detail.CustomerAddress = c.Address
	}
	if u, ok := m.users[s.CreatedBy]; ok {
		detail.CreatedByName = u.Username
	}
	for _, item := range m.saleItems[id] {
		if item.DeletedAt != nil {
			continue
		}
		line := domain.SaleItemDetail{ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Price}
		if p, ok := m.products[item.ProductID]; ok {
			line.ProductName = p.Name
		}
		detail.Items = append(detail.Items, line)
	}
	return detail, nil
}

func (m *memSales) List(ctx context.Context) ([]domain.SaleSummary, error) {
	var out []domain.SaleSummary
	for _, s := range m.sales {
		if s.DeletedAt != nil {
			continue
		}
		summary := domain.SaleSummary{ID: s.ID, TotalAmount: s.TotalAmount, CreatedAt: s.CreatedAt}
		if c, ok := m.customers[s.CustomerID]; ok {
			summary.CustomerName = c.Name
			summary.CustomerPhone = c.Phone
		}
		out = append(out, summary)
	}
	return out, nil
}

func (m *memSales) InsertItem(ctx context.Context, item *domain.SaleItem) error {
	cp := *item
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	m.saleItems[item.SaleID] = append(m.saleItems[item.SaleID], cp)
	return nil
}

func (m *memSales) ListLiveItems(ctx context.Context, saleID uuid.UUID) ([]domain.SaleItem, error) {
	var out []domain.SaleItem
	for _, item := range m.saleItems[saleID] {
		if item.DeletedAt == nil {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memSales) SoftDeleteItems(ctx context.Context, saleID uuid.UUID) error {
	now := time.Now()
	items := m.saleItems[saleID]
	for i := range items {
		if items[i].DeletedAt == nil {
			items[i].DeletedAt = &now
		}
	}
	return nil
}

func (m *memSales) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	s, ok := m.sales[id]
	if !ok {
		return repository.ErrSaleNotFound
	}
	s.TotalAmount = total
	return nil
}

func (m *memSales) SoftDelete(ctx context.Context, id uuid.UUID) error {
	s, ok := m.sales[id]
	if !ok || s.DeletedAt != nil {
		return repository.ErrSaleNotFound
	}
	now := time.Now()
	s.DeletedAt = &now
	return nil
}

// recordingMailer captures dispatched proposals; fail makes every send error.
type recordingMailer struct {
	sent []mailer.DraftProposal
	fail error
}

func (m *recordingMailer) SendDraftProposal(ctx context.Context, proposal mailer.DraftProposal) error {
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, proposal)
	return nil
}
