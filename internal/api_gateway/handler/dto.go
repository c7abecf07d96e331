package handler

import (
	"time"

	"github.com/register-pos/internal/domain/catalog"
	"github.com/register-pos/internal/domain/register"
	"github.com/register-pos/internal/domain/sale"
)

// AddItemRequest selects one catalog line for the open transaction
type AddItemRequest struct {
	Category    string `json:"category"`
	SubItem     string `json:"sub_item"`
	CustomPrice int64  `json:"custom_price"`
}

func (r AddItemRequest) Selection() catalog.Selection {
	return catalog.Selection{Category: r.Category, SubItem: r.SubItem, CustomPrice: r.CustomPrice}
}

// ExpenseRequest pays an amount out of the drawer. The amount is checked by the ledger.
type ExpenseRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
}

// ChangeQuery carries the amount handed over by the customer
type ChangeQuery struct {
	Received *int64 `form:"received" binding:"required"`
}

// MovementsQuery limits the movement journal listing
type MovementsQuery struct {
	Limit int `form:"limit,default=50" binding:"min=1,max=500"`
}

// ReplaceItemsRequest swaps in a whole item list
type ReplaceItemsRequest struct {
	Items []catalog.Item `json:"items" binding:"required"`
}

// EditRequest applies editor operations in order
type EditRequest struct {
	Edits []sale.Edit `json:"edits" binding:"required,min=1"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID        string         `json:"id,omitempty"`
	Items     []catalog.Item `json:"items"`
	Total     int64          `json:"total"`
	CreatedAt string         `json:"created_at,omitempty"`
	IsClosed  bool           `json:"is_closed"`
	IsCurrent bool           `json:"is_current"`
}

// BalanceResponse represents the register balance
type BalanceResponse struct {
	Cash        int64  `json:"cash"`
	LastUpdated string `json:"last_updated"`
	Version     int    `json:"version"`
}

// ChangeResponse is the result of the change calculator
type ChangeResponse struct {
	Received     int64 `json:"received"`
	Total        int64 `json:"total"`
	Change       int64 `json:"change"`
	Insufficient bool  `json:"insufficient"`
}

// CloseResponse is returned by a successful register close
type CloseResponse struct {
	Closed  TransactionResponse `json:"closed"`
	Balance BalanceResponse     `json:"balance"`
	Current TransactionResponse `json:"current"`
}

// MovementResponse represents one journal entry
type MovementResponse struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Amount        int64  `json:"amount"`
	CashAfter     int64  `json:"cash_after"`
	TransactionID string `json:"transaction_id,omitempty"`
	RecordedAt    string `json:"recorded_at"`
}

// DailySalesResponse represents one calendar day
type DailySalesResponse struct {
	Date         string                `json:"date"`
	Transactions []TransactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
}

// SalesResponse is the daily grouping with rows that could not be placed
type SalesResponse struct {
	Days    []DailySalesResponse `json:"days"`
	Skipped []sale.SkippedRecord `json:"skipped,omitempty"`
}

// EditResponse is a saved edit together with the refreshed daily sales
type EditResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Sales       SalesResponse       `json:"sales"`
}

// CatalogEntryResponse describes one category of the price list
type CatalogEntryResponse struct {
	Category    string         `json:"category"`
	Kind        string         `json:"kind"`
	Price       *int64         `json:"price,omitempty"`
	CustomPrice bool           `json:"custom_price,omitempty"`
	SubItems    []SubItemEntry `json:"sub_items,omitempty"`
}

// SubItemEntry is one member of a group category
type SubItemEntry struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func mapTransactionToResponse(t sale.Transaction) TransactionResponse {
	response := TransactionResponse{
		Items:     t.Items,
		Total:     t.Total,
		IsClosed:  t.IsClosed,
		IsCurrent: t.IsCurrent,
	}
	if response.Items == nil {
		response.Items = []catalog.Item{}
	}
	if t.HasID() {
		response.ID = t.ID.String()
	}
	if t.CreatedAt != nil {
		response.CreatedAt = t.CreatedAt.Format(time.RFC3339)
	}
	return response
}

func mapBalanceToResponse(b *register.Balance) BalanceResponse {
	return BalanceResponse{
		Cash:        b.Cash,
		LastUpdated: b.LastUpdated.Format(time.RFC3339),
		Version:     b.Version,
	}
}

func mapMovementToResponse(m *register.Movement) MovementResponse {
	response := MovementResponse{
		ID:         m.ID.String(),
		Kind:       string(m.Kind),
		Amount:     m.Amount,
		CashAfter:  m.CashAfter,
		RecordedAt: m.RecordedAt.Format(time.RFC3339),
	}
	if m.TransactionID != nil {
		response.TransactionID = m.TransactionID.String()
	}
	return response
}

func mapSalesToResponse(agg *sale.Aggregation) SalesResponse {
	response := SalesResponse{Days: make([]DailySalesResponse, 0, len(agg.Days)), Skipped: agg.Skipped}
	for _, day := range agg.Days {
		d := DailySalesResponse{
			Date:         day.Date,
			Total:        day.Total,
			Transactions: make([]TransactionResponse, 0, len(day.Transactions)),
		}
		for _, t := range day.Transactions {
			d.Transactions = append(d.Transactions, mapTransactionToResponse(t))
		}
		response.Days = append(response.Days, d)
	}
	return response
}

func mapCatalogToResponse(cat *catalog.Catalog) []CatalogEntryResponse {
	out := make([]CatalogEntryResponse, 0)
	for _, name := range cat.Categories() {
		entry, _ := cat.Entry(name)
		response := CatalogEntryResponse{Category: name, Kind: entry.Kind().String()}

		if item, ok := entry.Item(); ok {
			if entry.CustomPrice() {
				response.CustomPrice = true
			} else {
				price := item.Price
				response.Price = &price
			}
		}
		for _, key := range entry.Members() {
			item, _ := entry.Member(key)
			response.SubItems = append(response.SubItems, SubItemEntry{Key: key, Name: item.Name, Price: item.Price})
		}
		out = append(out, response)
	}
	return out
}
