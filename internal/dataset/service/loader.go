package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/chantierpro/finance/internal/config"
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	obsmetrics "github.com/chantierpro/finance/internal/observability/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	Analytics  *config.AnalyticsConfigHolder
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

// FileSource reads the dataset from a JSON file on every Load.
type FileSource struct {
	path      string
	log       *zap.Logger
	analytics *config.AnalyticsConfigHolder
	validate  *validator.Validate
	metrics   *obsmetrics.Metrics
}

func NewFileSource(p Params) datasetdomain.Source {
	s := NewFileSourceAt(p.Cfg.DatasetPath, p.Log, p.Analytics)
	s.metrics = p.ObsMetrics
	return s
}

// NewFileSourceAt builds a source for an explicit path.
func NewFileSourceAt(path string, log *zap.Logger, analytics *config.AnalyticsConfigHolder) *FileSource {
	return &FileSource{
		path:      path,
		log:       log.Named("dataset.loader"),
		analytics: analytics,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *FileSource) Load(ctx context.Context) (datasetdomain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return datasetdomain.Dataset{}, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return datasetdomain.Dataset{}, fmt.Errorf("%w: %s", datasetdomain.ErrDatasetNotFound, s.path)
		}
		return datasetdomain.Dataset{}, err
	}
	defer f.Close()

	ds, warnings, err := Decode(f, s.defaultVATRate(), s.validate)
	if err != nil {
		return datasetdomain.Dataset{}, err
	}
	perCollection := make(map[string]int)
	for _, w := range warnings {
		perCollection[w.Collection]++
		s.log.Warn("dataset record repaired",
			zap.String("collection", w.Collection),
			zap.String("record_id", w.RecordID),
			zap.String("field", w.Field),
			zap.String("message", w.Message),
		)
	}
	for collection, count := range perCollection {
		s.metrics.RecordDatasetWarnings(ctx, collection, count)
	}
	s.log.Debug("dataset loaded",
		zap.String("path", s.path),
		zap.Int("projects", len(ds.Projects)),
		zap.Int("documents", len(ds.Documents)),
		zap.Int("expenses", len(ds.Expenses)),
		zap.Int("warnings", len(warnings)),
	)
	return ds, nil
}

func (s *FileSource) defaultVATRate() decimal.Decimal {
	if s.analytics == nil {
		return decimal.NewFromInt(20)
	}
	return decimal.NewFromFloat(s.analytics.Get().DefaultVATRate)
}

// Decode parses a dataset document. Structural JSON errors abort; everything
// else (bad numbers, unknown statuses, missing rates) is repaired and
// reported as a warning.
func Decode(r io.Reader, defaultVATRate decimal.Decimal, validate *validator.Validate) (datasetdomain.Dataset, []datasetdomain.Warning, error) {
	var dto datasetDTO
	if err := json.NewDecoder(r).Decode(&dto); err != nil {
		return datasetdomain.Dataset{}, nil, fmt.Errorf("%w: %v", datasetdomain.ErrInvalidDataset, err)
	}
	if validate == nil {
		validate = validator.New()
	}
	m := &mapper{defaultVATRate: defaultVATRate, validate: validate}
	return m.dataset(dto), m.warnings, nil
}

type mapper struct {
	defaultVATRate decimal.Decimal
	validate       *validator.Validate
	warnings       []datasetdomain.Warning
}

func (m *mapper) warn(collection, id, field, message string) {
	m.warnings = append(m.warnings, datasetdomain.Warning{
		Collection: collection,
		RecordID:   id,
		Field:      field,
		Message:    message,
	})
}

func (m *mapper) check(collection, id string, record any) {
	err := m.validate.Struct(record)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		m.warn(collection, id, "", err.Error())
		return
	}
	for _, fe := range verrs {
		m.warn(collection, id, fe.Field(), "failed "+fe.Tag()+" check")
	}
}

func (m *mapper) amount(collection, id, field string, n number) decimal.Decimal {
	if n.invalid != "" {
		m.warn(collection, id, field, fmt.Sprintf("malformed number %q treated as 0", n.invalid))
	}
	return n.value
}

func (m *mapper) rate(collection, id string, n number) decimal.Decimal {
	if n.invalid != "" {
		m.warn(collection, id, "vat_rate", fmt.Sprintf("malformed rate %q replaced by default", n.invalid))
		return m.defaultVATRate
	}
	if !n.present {
		return m.defaultVATRate
	}
	return n.value
}

func (m *mapper) day(collection, id, field string, d date) date {
	if d.invalid != "" {
		m.warn(collection, id, field, fmt.Sprintf("malformed date %q ignored", d.invalid))
	}
	return d
}

func (m *mapper) dataset(dto datasetDTO) datasetdomain.Dataset {
	ds := datasetdomain.Dataset{
		Company:     m.company(dto.Company),
		Projects:    make([]datasetdomain.Project, 0, len(dto.Projects)),
		Documents:   make([]datasetdomain.Document, 0, len(dto.Documents)),
		Expenses:    make([]datasetdomain.Expense, 0, len(dto.Expenses)),
		TimeEntries: make([]datasetdomain.TimeEntry, 0, len(dto.TimeEntries)),
		Team:        make([]datasetdomain.TeamMember, 0, len(dto.Team)),
		Adjustments: make([]datasetdomain.Adjustment, 0, len(dto.Adjustments)),
		Clients:     make([]datasetdomain.Client, 0, len(dto.Clients)),
	}
	for _, p := range dto.Projects {
		ds.Projects = append(ds.Projects, m.project(p))
	}
	for _, d := range dto.Documents {
		ds.Documents = append(ds.Documents, m.document(d))
	}
	for _, e := range dto.Expenses {
		ds.Expenses = append(ds.Expenses, m.expense(e))
	}
	for _, t := range dto.TimeEntries {
		ds.TimeEntries = append(ds.TimeEntries, datasetdomain.TimeEntry{
			ProjectID:  t.ProjectID.String(),
			EmployeeID: t.EmployeeID.String(),
			Hours:      m.amount("time_entries", t.EmployeeID.String(), "hours", t.Hours),
		})
	}
	for _, tm := range dto.Team {
		id := tm.ID.String()
		m.check("team", id, tm)
		ds.Team = append(ds.Team, datasetdomain.TeamMember{
			ID:               id,
			Name:             tm.Name,
			HourlyRate:       m.amount("team", id, "hourly_rate", tm.HourlyRate),
			LoadedHourlyCost: m.amount("team", id, "loaded_hourly_cost", tm.LoadedHourlyCost),
		})
	}
	for _, a := range dto.Adjustments {
		ds.Adjustments = append(ds.Adjustments, m.adjustment(a))
	}
	for _, c := range dto.Clients {
		id := c.ID.String()
		m.check("clients", id, c)
		ds.Clients = append(ds.Clients, datasetdomain.Client{
			ID:      id,
			Name:    c.Name,
			Email:   c.Email,
			Address: c.Address,
			SIRET:   c.SIRET,
		})
	}
	return ds
}

func (m *mapper) company(c companyDTO) datasetdomain.Company {
	m.check("company", "", c)
	siren := strings.TrimSpace(c.SIREN)
	siret := strings.TrimSpace(c.SIRET)
	if siren == "" && len(siret) == 14 {
		siren = siret[:9]
	}
	return datasetdomain.Company{
		Name:      c.Name,
		SIRET:     siret,
		SIREN:     siren,
		VATNumber: c.VATNumber,
		Address:   c.Address,
	}
}

func (m *mapper) project(p projectDTO) datasetdomain.Project {
	id := p.ID.String()
	m.check("projects", id, p)
	status, ok := datasetdomain.ParseProjectStatus(p.Status)
	if !ok && p.Status != "" {
		m.warn("projects", id, "status", fmt.Sprintf("unknown status %q treated as %s", p.Status, status))
	}
	return datasetdomain.Project{
		ID:              id,
		Name:            p.Name,
		Status:          status,
		ClientID:        p.ClientID.String(),
		EstimatedBudget: m.amount("projects", id, "estimated_budget", p.EstimatedBudget),
		Progress:        m.amount("projects", id, "progress", p.Progress),
	}
}

func (m *mapper) document(d documentDTO) datasetdomain.Document {
	id := d.ID.String()
	m.check("documents", id, d)
	docType, ok := datasetdomain.ParseDocumentType(d.Type)
	if !ok {
		m.warn("documents", id, "type", fmt.Sprintf("unknown type %q treated as quote", d.Type))
	}
	status, ok := datasetdomain.ParseDocumentStatus(d.Status)
	if !ok {
		m.warn("documents", id, "status", fmt.Sprintf("unknown status %q treated as draft", d.Status))
	}
	lines := make([]datasetdomain.LineItem, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, datasetdomain.LineItem{
			Description: l.Description,
			Quantity:    m.amount("documents", id, "lines.quantity", l.Quantity),
			Unit:        l.Unit,
			UnitPrice:   m.amount("documents", id, "lines.unit_price", l.UnitPrice),
		})
	}
	issued := m.day("documents", id, "date", d.Date)
	due := m.day("documents", id, "due_date", d.DueDate)
	return datasetdomain.Document{
		ID:                id,
		Number:            d.Number,
		Type:              docType,
		Status:            status,
		ProjectID:         d.ProjectID.String(),
		ClientID:          d.ClientID.String(),
		Date:              issued.value,
		DueDate:           due.ptr(),
		Lines:             lines,
		VATRate:           m.rate("documents", id, d.VATRate),
		StoredPreTaxTotal: m.amount("documents", id, "pre_tax_total", d.PreTaxTotal),
	}
}

func (m *mapper) expense(e expenseDTO) datasetdomain.Expense {
	id := e.ID.String()
	m.check("expenses", id, e)
	method := strings.TrimSpace(e.PaymentMethod)
	if method == "" {
		method = datasetdomain.DefaultPaymentMethod
	}
	return datasetdomain.Expense{
		ID:            id,
		ProjectID:     e.ProjectID.String(),
		Date:          m.day("expenses", id, "date", e.Date).value,
		Description:   e.Description,
		Amount:        m.amount("expenses", id, "amount", e.Amount),
		VATRate:       m.rate("expenses", id, e.VATRate),
		Category:      datasetdomain.ParseExpenseCategory(e.Category),
		Supplier:      e.Supplier,
		PaymentMethod: method,
	}
}

func (m *mapper) adjustment(a adjustmentDTO) datasetdomain.Adjustment {
	projectID := a.ProjectID.String()
	kind, ok := datasetdomain.ParseAdjustmentKind(a.Kind)
	if !ok {
		m.warn("adjustments", projectID, "kind", fmt.Sprintf("unknown kind %q ignored by margins", a.Kind))
	}
	amount := m.amount("adjustments", projectID, "amount", a.Amount)
	if amount.IsZero() {
		amount = m.amount("adjustments", projectID, "amount_ht", a.AmountHT)
	}
	return datasetdomain.Adjustment{
		ProjectID: projectID,
		Kind:      kind,
		Amount:    amount,
	}
}
