package parser_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farerules/internal/domain"
	"farerules/internal/parser"
)

const cgReceipt = `PNG AIR LIMITED
ELECTRONIC TICKET RECEIPT
Passenger: DOE/JOHN MR
Carrier CG
From MAG to WWK
Base Fare      PGK 238.00
Taxes PGK 22.80GC PGK 30.00YQ
XT 15.50
Total PGK 306.30
`

const pxDerivedBase = `OPERATED BY AIR NIUGINI
E-TICKET
ORIGIN: POM
DESTINATION: LAE
TAX YQ 45.00 / YR 5.00
GRAND TOTAL 350.00
`

func TestParse_CGReceipt(t *testing.T) {
	ticket, diag := newParser().ParseWithDiagnostics(cgReceipt)

	assert.Equal(t, domain.CarrierCG, ticket.Carrier)
	assert.Equal(t, "MAG-WWK", ticket.Route)
	assert.Equal(t, "PGK", ticket.Currency)
	assertAmount(t, "238.00", ticket.Components.BaseAmount())
	assertAmount(t, "30.00", ticket.Components.Amount("YQ"))
	assertAmount(t, "0.00", ticket.Components.Amount("YR"))
	assertAmount(t, "15.50", ticket.Components.Amount("XT"))
	assertAmount(t, "22.80", ticket.Components.Amount("GC"))
	assertAmount(t, "306.30", ticket.Total)

	assert.Equal(t, "directional", diag.RouteStrategy)
	assert.Equal(t, []string{"YQ", "XT", "GC"}, diag.ObservedCodes)
	assert.False(t, diag.BaseDerived)
}

func TestParse_DerivesBaseFromTotal(t *testing.T) {
	ticket, diag := newParser().ParseWithDiagnostics(pxDerivedBase)

	assert.Equal(t, domain.CarrierPX, ticket.Carrier)
	assert.Equal(t, "POM-LAE", ticket.Route)
	assertAmount(t, "45.00", ticket.Components.Amount("YQ"))
	assertAmount(t, "5.00", ticket.Components.Amount("YR"))
	assertAmount(t, "350.00", ticket.Total)
	assertAmount(t, "300.00", ticket.Components.BaseAmount())
	assert.True(t, diag.BaseDerived)
}

func TestParse_NoDerivationWithoutTaxes(t *testing.T) {
	ticket := newParser().Parse("TOTAL 120.00")

	assertAmount(t, "0.00", ticket.Components.BaseAmount())
	assert.False(t, ticket.Components.Base.Valid)
	assertAmount(t, "120.00", ticket.Total)
}

func TestParse_NoDerivationWhenTaxesExceedTotal(t *testing.T) {
	ticket := newParser().Parse("TAX YQ 80.00\nTOTAL 50.00")

	assert.False(t, ticket.Components.Base.Valid)
}

func TestParse_Empty(t *testing.T) {
	ticket := newParser().Parse("")

	assert.Equal(t, domain.CarrierUnknown, ticket.Carrier)
	assert.Equal(t, domain.UnknownRoute, ticket.Route)
	assert.Equal(t, "PGK", ticket.Currency)
	assertAmount(t, "0.00", ticket.Total)
	assert.Empty(t, ticket.Components.ObservedCodes())
}

func TestDetectCarrier(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Carrier
	}{
		{name: "PX by name", text: "Welcome aboard Air Niugini", want: domain.CarrierPX},
		{name: "PX by code", text: "FLIGHT PX 101", want: domain.CarrierPX},
		{name: "CG by name", text: "Thank you for flying PNG Air", want: domain.CarrierCG},
		{name: "CG by code", text: "FLT CG1602 / CG", want: domain.CarrierCG},
		{name: "CG overrides PX", text: "PX INTERLINE\nOPERATED BY CG", want: domain.CarrierCG},
		{name: "code inside word ignored", text: "APEX FARE", want: domain.CarrierUnknown},
		{name: "none", text: "GENERIC RECEIPT", want: domain.CarrierUnknown},
	}

	p := newParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.DetectCarrier(parser.Normalize(tt.text)))
		})
	}
}

func TestDetectCurrency_DefaultsWhenAbsent(t *testing.T) {
	p := newParser()

	assert.Equal(t, "PGK", p.DetectCurrency(parser.Normalize("TOTAL 10.00 pgk")))
	assert.Equal(t, "PGK", p.DetectCurrency(parser.Normalize("TOTAL 10.00")))
}

func TestExtractTotal(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "total line", text: "TOTAL AMOUNT PGK 1,234.56", want: "1234.56"},
		{name: "max across total lines", text: "SUB TOTAL 100.00\nGRAND TOTAL 140.00", want: "140.00"},
		{name: "largest amount fallback", text: "AMOUNT DUE 120.50\nPAID 1,250.00", want: "1250.00"},
		{name: "nothing", text: "NO AMOUNTS", want: "0.00"},
	}

	p := newParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertAmount(t, tt.want, p.ExtractTotal(parser.Normalize(tt.text)))
		})
	}
}

func TestExtractBaseFare_TakesMaximum(t *testing.T) {
	text := "BASE FARE 100.00\nAIR FARE PGK 180.00\nFARE BASIS Y"
	base := newParser().ExtractBaseFare(parser.Normalize(text))

	assert.True(t, base.Valid)
	assertAmount(t, "180.00", base.Decimal)
}

func TestParsedTicket_JSON(t *testing.T) {
	ticket := newParser().Parse(cgReceipt)

	data, err := json.Marshal(ticket)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "CG", out["carrier"])
	assert.Equal(t, "MAG-WWK", out["route"])
	assert.Equal(t, 306.3, out["total"])

	components := out["components"].(map[string]interface{})
	assert.Equal(t, 238.0, components["base"])
	assert.Equal(t, 22.8, components["GC"])
	assert.Equal(t, 0.0, components["YR"])
	assert.Len(t, components, 6)
}
