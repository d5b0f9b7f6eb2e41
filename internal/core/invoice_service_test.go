package core

import "testing"

func TestListInvoicesParamsNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListInvoicesParams
		want ListInvoicesParams
	}{
		{
			name: "zero values get defaults",
			in:   ListInvoicesParams{},
			want: ListInvoicesParams{Page: 1, Limit: 50, SortBy: "invoiceDate", SortOrder: "desc"},
		},
		{
			name: "negative page clamps to first",
			in:   ListInvoicesParams{Page: -3, Limit: 10},
			want: ListInvoicesParams{Page: 1, Limit: 10, SortBy: "invoiceDate", SortOrder: "desc"},
		},
		{
			name: "asc is the only accepted ascending spelling",
			in:   ListInvoicesParams{SortOrder: "ASC"},
			want: ListInvoicesParams{Page: 1, Limit: 50, SortBy: "invoiceDate", SortOrder: "desc"},
		},
		{
			name: "explicit values pass through",
			in:   ListInvoicesParams{Search: "acme", Page: 3, Limit: 25, SortBy: "vendor", SortOrder: "asc"},
			want: ListInvoicesParams{Search: "acme", Page: 3, Limit: 25, SortBy: "vendor", SortOrder: "asc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.Normalize()
			if got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		name   string
		params ListInvoicesParams
		want   string
	}{
		{"default", ListInvoicesParams{SortBy: "invoiceDate", SortOrder: "desc"}, "ORDER BY i.invoice_date DESC"},
		{"vendor sorts through join", ListInvoicesParams{SortBy: "vendor", SortOrder: "asc"}, "ORDER BY v.vendor_name ASC"},
		{"amount sorts through summary", ListInvoicesParams{SortBy: "amount", SortOrder: "desc"}, "ORDER BY sm.invoice_total DESC"},
		{"unknown column falls back to invoice date", ListInvoicesParams{SortBy: "id; DROP TABLE invoices", SortOrder: "desc"}, "ORDER BY i.invoice_date DESC"},
		{"unknown direction falls back to DESC", ListInvoicesParams{SortBy: "id", SortOrder: "sideways"}, "ORDER BY i.id DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := orderClause(tt.params); got != tt.want {
				t.Errorf("orderClause(%+v) = %q, want %q", tt.params, got, tt.want)
			}
		})
	}
}
