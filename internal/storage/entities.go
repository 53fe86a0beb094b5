package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/tasklist/internal/model"
)

// Record is the canonical on-disk shape of an item. The short keys match
// the data files the web revisions of the app already wrote.
type Record struct {
	Title     string  `json:"title"`
	Cat       string  `json:"cat"`
	Prio      *int    `json:"prio"`
	DL        *string `json:"dl"`
	Status    string  `json:"status"`
	CreatedAt *string `json:"created_at,omitempty"`
}

// Skipped describes a record that could not be fully decoded. Decoding never
// fails on a single bad field; the field is defaulted and reported here.
type Skipped struct {
	Index  int
	Reason string
}

func toRecord(item model.Item) Record {
	prio := int(item.Priority)
	rec := Record{
		Title:  item.Title,
		Cat:    item.Category,
		Prio:   &prio,
		Status: string(item.Status),
	}
	if item.HasDue() {
		dl := item.DueString()
		rec.DL = &dl
	}
	if !item.CreatedAt.IsZero() {
		created := item.CreatedAt.Format(model.CreatedAtLayout)
		rec.CreatedAt = &created
	}
	return rec
}

func fromRecord(rec Record) (model.Item, []string) {
	var notes []string
	prio := model.DefaultPriority
	if rec.Prio != nil {
		if p := model.Priority(*rec.Prio); p.IsValid() {
			prio = p
		} else {
			notes = append(notes, fmt.Sprintf("priority %d out of range", *rec.Prio))
		}
	}
	var due time.Time
	if rec.DL != nil {
		d, err := model.ParseDueDate(*rec.DL)
		if err != nil {
			notes = append(notes, err.Error())
		} else {
			due = d
		}
	}
	item := model.New(rec.Title, rec.Cat, prio, due)
	status, err := model.ParseStatus(rec.Status)
	if err != nil {
		notes = append(notes, err.Error())
		status = model.StatusPending
	}
	item.Status = status
	if rec.CreatedAt != nil && strings.TrimSpace(*rec.CreatedAt) != "" {
		created, err := time.ParseInLocation(model.CreatedAtLayout, *rec.CreatedAt, time.Local)
		if err != nil {
			notes = append(notes, fmt.Sprintf("created_at %q unreadable", *rec.CreatedAt))
		} else {
			item.CreatedAt = created
		}
	}
	return item, notes
}

// EncodeItems renders the canonical JSON document for items.
func EncodeItems(items []model.Item) ([]byte, error) {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		records = append(records, toRecord(item))
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeItems validates raw against the item schema and decodes it. Empty
// input decodes to an empty list. Records whose fields had to be defaulted
// are reported in the returned Skipped slice; records without a title are
// dropped and reported too.
func DecodeItems(raw []byte) ([]model.Item, []Skipped, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return []model.Item{}, nil, nil
	}
	if err := validateDocument(raw); err != nil {
		return nil, nil, err
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	items := make([]model.Item, 0, len(records))
	var skipped []Skipped
	for i, rec := range records {
		if strings.TrimSpace(rec.Title) == "" {
			skipped = append(skipped, Skipped{Index: i, Reason: "missing title"})
			continue
		}
		item, notes := fromRecord(rec)
		for _, note := range notes {
			skipped = append(skipped, Skipped{Index: i, Reason: note})
		}
		items = append(items, item)
	}
	return items, skipped, nil
}
