package domain

type Passenger struct {
	ID         int64  `json:"id"`
	PassportNo string `json:"passport_number"`
	FullName   string `json:"full_name"`
	BirthDate  Date   `json:"birth_date"`
	Country    string `json:"country"`
}
