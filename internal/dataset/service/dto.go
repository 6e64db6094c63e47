package service

type datasetDTO struct {
	Company     companyDTO      `json:"company"`
	Projects    []projectDTO    `json:"projects"`
	Documents   []documentDTO   `json:"documents"`
	Expenses    []expenseDTO    `json:"expenses"`
	TimeEntries []timeEntryDTO  `json:"time_entries"`
	Team        []memberDTO     `json:"team"`
	Adjustments []adjustmentDTO `json:"adjustments"`
	Clients     []clientDTO     `json:"clients"`
}

type companyDTO struct {
	Name      string `json:"name"`
	SIRET     string `json:"siret" validate:"omitempty,numeric,len=14"`
	SIREN     string `json:"siren" validate:"omitempty,numeric,len=9"`
	VATNumber string `json:"vat_number" validate:"omitempty,alphanum,min=4,max=15"`
	Address   string `json:"address"`
}

type projectDTO struct {
	ID              identifier `json:"id" validate:"required"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	ClientID        identifier `json:"client_id"`
	EstimatedBudget number     `json:"estimated_budget"`
	Progress        number     `json:"progress"`
}

type lineDTO struct {
	Description string `json:"description"`
	Quantity    number `json:"quantity"`
	Unit        string `json:"unit"`
	UnitPrice   number `json:"unit_price"`
}

type documentDTO struct {
	ID          identifier `json:"id" validate:"required"`
	Number      string     `json:"number" validate:"required"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	ProjectID   identifier `json:"project_id"`
	ClientID    identifier `json:"client_id"`
	Date        date       `json:"date"`
	DueDate     date       `json:"due_date"`
	Lines       []lineDTO  `json:"lines"`
	VATRate     number     `json:"vat_rate"`
	PreTaxTotal number     `json:"pre_tax_total"`
}

type expenseDTO struct {
	ID            identifier `json:"id" validate:"required"`
	ProjectID     identifier `json:"project_id"`
	Date          date       `json:"date"`
	Description   string     `json:"description"`
	Amount        number     `json:"amount"`
	VATRate       number     `json:"vat_rate"`
	Category      string     `json:"category"`
	Supplier      string     `json:"supplier"`
	PaymentMethod string     `json:"payment_method"`
}

type timeEntryDTO struct {
	ProjectID  identifier `json:"project_id"`
	EmployeeID identifier `json:"employee_id"`
	Hours      number     `json:"hours"`
}

type memberDTO struct {
	ID               identifier `json:"id" validate:"required"`
	Name             string     `json:"name"`
	HourlyRate       number     `json:"hourly_rate"`
	LoadedHourlyCost number     `json:"loaded_hourly_cost"`
}

type adjustmentDTO struct {
	ProjectID identifier `json:"project_id"`
	Kind      string     `json:"kind"`
	Amount    number     `json:"amount"`
	AmountHT  number     `json:"amount_ht"`
}

type clientDTO struct {
	ID      identifier `json:"id" validate:"required"`
	Name    string     `json:"name"`
	Email   string     `json:"email" validate:"omitempty,email"`
	Address string     `json:"address"`
	SIRET   string     `json:"siret" validate:"omitempty,numeric,len=14"`
}
