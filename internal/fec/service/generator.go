package service

import (
	"fmt"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	fecdomain "github.com/chantierpro/finance/internal/fec/domain"
	"github.com/shopspring/decimal"
)

// Generate builds the ledger of a period: one sales entry per invoice then
// one purchase entry per expense, numbered from 1 in that order. Every entry
// is checked for balance before it is kept.
func Generate(ds datasetdomain.Dataset, period datasetdomain.Period, labels Labels) (fecdomain.Ledger, error) {
	idx := datasetdomain.NewIndex(ds)
	ledger := fecdomain.Ledger{Period: period, Company: ds.Company}

	number := 1
	for _, inv := range ds.InvoicesIn(period) {
		entry := salesEntry(idx, inv, number, labels)
		if err := fecdomain.ValidateBalanced(entry.Lines); err != nil {
			return fecdomain.Ledger{}, fmt.Errorf("invoice %s: %w", inv.Number, err)
		}
		ledger.Entries = append(ledger.Entries, entry)
		number++
	}
	for _, exp := range ds.ExpensesIn(period) {
		entry := purchaseEntry(exp, number, labels)
		if err := fecdomain.ValidateBalanced(entry.Lines); err != nil {
			return fecdomain.Ledger{}, fmt.Errorf("expense %s: %w", exp.ID, err)
		}
		ledger.Entries = append(ledger.Entries, entry)
		number++
	}
	return ledger, nil
}

func salesEntry(idx *datasetdomain.Index, inv datasetdomain.Document, number int, labels Labels) fecdomain.Entry {
	amounts := inv.Amounts()
	var auxID, auxLabel string
	if client, ok := idx.Client(inv.ClientID); ok {
		auxID, auxLabel = client.ID, client.Name
	}

	line := func(account fecdomain.Account, label string, debit, credit decimal.Decimal) fecdomain.Line {
		return fecdomain.Line{
			Journal:        fecdomain.JournalSales,
			EntryNumber:    number,
			EntryDate:      inv.Date,
			Account:        account,
			PieceRef:       inv.Number,
			PieceDate:      inv.Date,
			Label:          label,
			Debit:          debit,
			Credit:         credit,
			ValidationDate: inv.Date,
			Currency:       fecdomain.Currency,
		}
	}

	client := line(fecdomain.AccountClients, labels.invoice(inv.Number), amounts.WithTax, decimal.Zero)
	client.AuxiliaryID = auxID
	client.AuxiliaryLabel = auxLabel
	return fecdomain.Entry{
		Number: number,
		Lines: []fecdomain.Line{
			client,
			line(fecdomain.AccountServices, labels.invoice(inv.Number), decimal.Zero, amounts.PreTax),
			line(fecdomain.AccountVATCollected, labels.invoiceVAT(inv.Number), decimal.Zero, amounts.VAT),
		},
	}
}

func purchaseEntry(exp datasetdomain.Expense, number int, labels Labels) fecdomain.Entry {
	amounts := exp.Amounts()

	line := func(account fecdomain.Account, label string, debit, credit decimal.Decimal) fecdomain.Line {
		return fecdomain.Line{
			Journal:        fecdomain.JournalPurchases,
			EntryNumber:    number,
			EntryDate:      exp.Date,
			Account:        account,
			PieceRef:       exp.ID,
			PieceDate:      exp.Date,
			Label:          label,
			Debit:          debit,
			Credit:         credit,
			ValidationDate: exp.Date,
			Currency:       fecdomain.Currency,
		}
	}

	supplier := line(fecdomain.AccountSuppliers, labels.expense(exp.Description), decimal.Zero, amounts.WithTax)
	supplier.AuxiliaryID = exp.Supplier
	supplier.AuxiliaryLabel = exp.Supplier
	return fecdomain.Entry{
		Number: number,
		Lines: []fecdomain.Line{
			supplier,
			line(fecdomain.PurchaseAccount(exp.Category), labels.expense(exp.Description), amounts.PreTax, decimal.Zero),
			line(fecdomain.AccountVATDeductible, labels.expenseVAT(exp.Description), amounts.VAT, decimal.Zero),
		},
	}
}
