package model

import "time"

// Collection names in the document store. The menus collection keeps the
// original deployment's name so existing data stays readable.
const (
	CollectionRatings     = "ratings"
	CollectionSuggestions = "suggestions"
	CollectionMenus       = "todaysMenu"
)

// Document is the flat key/value record shape the store port deals in.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// field reads a string field, tolerating absence.
func (d Document) field(name string) string {
	if v, ok := d.Data[name].(string); ok {
		return v
	}
	return ""
}

// timeField reads an instant field. Store adapters normalize their native
// timestamp representation to time.Time before handing documents out.
func (d Document) timeField(name string) time.Time {
	switch v := d.Data[name].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// intField reads a numeric field across the decodings different stores use.
func (d Document) intField(name string) int {
	switch v := d.Data[name].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (d Document) stringsField(name string) []string {
	switch v := d.Data[name].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// RatingFromDocument decodes a ratings-collection document.
func RatingFromDocument(d Document) Rating {
	return Rating{
		ID:        d.ID,
		UserID:    d.field("userId"),
		UserName:  d.field("userName"),
		MealType:  MealType(d.field("mealType")),
		Rating:    d.intField("rating"),
		Comment:   d.field("comment"),
		Date:      d.field("date"),
		Timestamp: d.timeField("timestamp"),
	}
}

// Document encodes the rating as a flat store record.
func (r Rating) Document() Document {
	return Document{
		ID: r.ID,
		Data: map[string]interface{}{
			"userId":    r.UserID,
			"userName":  r.UserName,
			"mealType":  string(r.MealType),
			"rating":    r.Rating,
			"comment":   r.Comment,
			"date":      r.Date,
			"timestamp": r.Timestamp,
		},
	}
}

// SuggestionFromDocument decodes a suggestions-collection document.
func SuggestionFromDocument(d Document) Suggestion {
	return Suggestion{
		ID:          d.ID,
		UserID:      d.field("userId"),
		UserName:    d.field("userName"),
		DishName:    d.field("dishName"),
		Category:    Category(d.field("category")),
		Description: d.field("description"),
		Date:        d.field("date"),
		Timestamp:   d.timeField("timestamp"),
		Status:      SuggestionStatus(d.field("status")),
	}
}

// Document encodes the suggestion as a flat store record.
func (s Suggestion) Document() Document {
	return Document{
		ID: s.ID,
		Data: map[string]interface{}{
			"userId":      s.UserID,
			"userName":    s.UserName,
			"dishName":    s.DishName,
			"category":    string(s.Category),
			"description": s.Description,
			"date":        s.Date,
			"timestamp":   s.Timestamp,
			"status":      string(s.Status),
		},
	}
}

// MenuFromDocument decodes a menus-collection document.
func MenuFromDocument(d Document) DailyMenu {
	return DailyMenu{
		Breakfast: d.stringsField("breakfast"),
		Lunch:     d.stringsField("lunch"),
		Dinner:    d.stringsField("dinner"),
		Date:      d.field("date"),
	}
}

// Document encodes the menu as a flat store record keyed by its date.
func (m DailyMenu) Document() Document {
	return Document{
		ID: m.Date,
		Data: map[string]interface{}{
			"breakfast": append([]string(nil), m.Breakfast...),
			"lunch":     append([]string(nil), m.Lunch...),
			"dinner":    append([]string(nil), m.Dinner...),
			"date":      m.Date,
		},
	}
}
