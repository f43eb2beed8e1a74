package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category `json:"category"`
	Amount   Money    `json:"amount"`
}

// MonthTotal is the spend for one calendar month.
type MonthTotal struct {
	Key    string `json:"key"` // "2006-01"
	Year   int    `json:"year"`
	Month  int    `json:"month"` // 1-12
	Amount Money  `json:"amount"`
}
