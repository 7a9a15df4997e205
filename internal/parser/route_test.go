package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"farerules/internal/parser"
)

func TestResolveRoute(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "directional phrase",
			text: "Flight from POM to LAE on 12JAN",
			want: "POM-LAE",
		},
		{
			name: "directional phrase beats adjacent pair",
			text: "FROM POM TO LAE\nSECTOR HGU-RAB",
			want: "POM-LAE",
		},
		{
			name: "directional phrase with unknown code falls through",
			text: "FROM XYZ TO LAE\nSECTOR HGU-RAB",
			want: "HGU-RAB",
		},
		{
			name: "labeled origin and destination",
			text: "ORIGIN: WWK\nDESTINATION: MAG",
			want: "WWK-MAG",
		},
		{
			name: "labeled short destination",
			text: "ORIGIN POM DEST BNE",
			want: "POM-BNE",
		},
		{
			name: "adjacent pair with slash",
			text: "ITINERARY POM/SIN",
			want: "POM-SIN",
		},
		{
			name: "adjacent pair skips stopwords",
			text: "TICKET PNG-POM REF\nSECTOR POM/LAE",
			want: "POM-LAE",
		},
		{
			name: "fare calculation line",
			text: "PNG AIR\nFARE CALCULATION\nMAG CG WWK238.00PGK238.00END\nTOTAL 238.00",
			want: "MAG-WWK",
		},
		{
			name: "fare calculation end marker line",
			text: "RECEIPT\n : HGU CG POM150.00PGK150.00END\n",
			want: "HGU-POM",
		},
		{
			name: "fare calculation with a single location",
			text: "FARE CALCULATION\nPOM PX 200.00END",
			want: "UNK-UNK",
		},
		{
			name: "nothing recognizable",
			text: "THANK YOU FOR FLYING",
			want: "UNK-UNK",
		},
		{
			name: "empty",
			text: "",
			want: "UNK-UNK",
		},
	}

	p := newParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ResolveRoute(parser.Normalize(tt.text)))
		})
	}
}

func TestResolveRoute_StrategyReported(t *testing.T) {
	p := newParser()

	_, diag := p.ParseWithDiagnostics("SECTOR HGU-RAB")
	assert.Equal(t, "adjacent_pair", diag.RouteStrategy)

	_, diag = p.ParseWithDiagnostics("nothing here")
	assert.Equal(t, "", diag.RouteStrategy)
}
