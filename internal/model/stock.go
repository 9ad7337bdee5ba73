package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Stock is the on-hand quantity of one product variant.
type Stock struct {
	Audit
	Product     string `json:"product" validate:"required"`
	ProductName string `json:"productName"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
	Threshold   int    `json:"threshold"`
}

// LowStock reports whether quantity fell to the alert threshold.
func (s *Stock) LowStock() bool {
	return s.Threshold > 0 && s.Quantity <= s.Threshold
}

// StockHistory is one audit row of a stock adjustment.
type StockHistory struct {
	Audit
	Stock          StockRef `json:"stock_id"`
	QuantityChange int      `json:"quantity_change"`
	QuantityAfter  int      `json:"quantity_after"`
	Reason         string   `json:"reason"`
	ChangedBy      string   `json:"changed_by"`
}

// StockRef is the stock_id field of a history row. Depending on whether the
// backend populated the reference it holds either just the id or the record.
type StockRef struct {
	ID     string
	Record *Stock
}

// Populated reports whether the full stock record is present.
func (r StockRef) Populated() bool {
	return r.Record != nil
}

func (r *StockRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = StockRef{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = StockRef{ID: id}
		return nil
	case len(data) > 0 && data[0] == '{':
		var s Stock
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode populated stock: %w", err)
		}
		if s.ID == "" {
			return errors.New("populated stock has no _id")
		}
		*r = StockRef{ID: s.ID, Record: &s}
		return nil
	}
	return fmt.Errorf("stock_id must be a string or an object, got %s", string(data))
}

func (r StockRef) MarshalJSON() ([]byte, error) {
	if r.Record != nil {
		return json.Marshal(r.Record)
	}
	return json.Marshal(r.ID)
}
