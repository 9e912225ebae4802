package model

import "time"

// DateKeyLayout renders a calendar day the way the menu collection is keyed,
// e.g. "Thu Aug 28 2026". One menu document exists per key.
const DateKeyLayout = "Mon Jan 02 2006"

// DateKey returns the menu document key for the calendar day of t.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// DailyMenu is the editable menu-of-the-day document. It is keyed by its
// Date and mutated only through a MenuEditSession.
type DailyMenu struct {
	Breakfast []string `json:"breakfast"`
	Lunch     []string `json:"lunch"`
	Dinner    []string `json:"dinner"`
	Date      string   `json:"date"`
}

// DefaultMenu returns the fixed item lists a day starts with when no menu
// document exists yet.
func DefaultMenu(date string) DailyMenu {
	return DailyMenu{
		Breakfast: []string{"Poha", "Tea/Coffee", "Boiled Eggs"},
		Lunch:     []string{"Dal Rice", "Mixed Vegetables", "Chapati", "Salad"},
		Dinner:    []string{"Rajma", "Jeera Rice", "Chapati", "Raita"},
		Date:      date,
	}
}

// Clone returns a deep copy of the menu. Edit buffers are clones so that
// buffer mutations can never reach the last-known remote state.
func (m DailyMenu) Clone() DailyMenu {
	c := DailyMenu{
		Breakfast: make([]string, len(m.Breakfast)),
		Lunch:     make([]string, len(m.Lunch)),
		Dinner:    make([]string, len(m.Dinner)),
		Date:      m.Date,
	}
	copy(c.Breakfast, m.Breakfast)
	copy(c.Lunch, m.Lunch)
	copy(c.Dinner, m.Dinner)
	return c
}

// Items returns the item list for the given meal. The date field is not
// addressable through this accessor, which is what keeps it uneditable.
func (m *DailyMenu) Items(meal MealType) []string {
	switch meal {
	case MealBreakfast:
		return m.Breakfast
	case MealLunch:
		return m.Lunch
	case MealDinner:
		return m.Dinner
	}
	return nil
}

func (m *DailyMenu) setItems(meal MealType, items []string) {
	switch meal {
	case MealBreakfast:
		m.Breakfast = items
	case MealLunch:
		m.Lunch = items
	case MealDinner:
		m.Dinner = items
	}
}

// SetItem replaces the item text at position idx of the given meal list.
func (m *DailyMenu) SetItem(meal MealType, idx int, text string) bool {
	items := m.Items(meal)
	if items == nil || idx < 0 || idx >= len(items) {
		return false
	}
	items[idx] = text
	return true
}

// AppendItem appends a blank item to the given meal list.
func (m *DailyMenu) AppendItem(meal MealType) bool {
	if !meal.IsValid() {
		return false
	}
	m.setItems(meal, append(m.Items(meal), ""))
	return true
}

// RemoveItem removes the item at position idx of the given meal list.
func (m *DailyMenu) RemoveItem(meal MealType, idx int) bool {
	items := m.Items(meal)
	if items == nil || idx < 0 || idx >= len(items) {
		return false
	}
	m.setItems(meal, append(items[:idx:idx], items[idx+1:]...))
	return true
}

// Equal reports whether two menus have identical content.
func (m DailyMenu) Equal(other DailyMenu) bool {
	if m.Date != other.Date {
		return false
	}
	for _, meal := range MealTypes() {
		a, b := m.Items(meal), other.Items(meal)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}
