package domain

// InvoicesIn returns the invoices dated within p, in dataset order.
func (ds Dataset) InvoicesIn(p Period) []Document {
	out := make([]Document, 0, len(ds.Documents))
	for _, doc := range ds.Documents {
		if doc.IsInvoice() && p.Contains(doc.Date) {
			out = append(out, doc)
		}
	}
	return out
}

// DocumentsIn returns quotes and invoices dated within p.
func (ds Dataset) DocumentsIn(p Period) []Document {
	out := make([]Document, 0, len(ds.Documents))
	for _, doc := range ds.Documents {
		if p.Contains(doc.Date) {
			out = append(out, doc)
		}
	}
	return out
}

// ExpensesIn returns the expenses dated within p. Undated expenses are
// never in a period.
func (ds Dataset) ExpensesIn(p Period) []Expense {
	out := make([]Expense, 0, len(ds.Expenses))
	for _, exp := range ds.Expenses {
		if p.Contains(exp.Date) {
			out = append(out, exp)
		}
	}
	return out
}
