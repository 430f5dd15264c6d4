package layout

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func span(id string, sh, sm, eh, em int) Span {
	return Span{ID: id, Start: at(sh, sm), End: at(eh, em)}
}

func ids(lanes [][]Span) [][]string {
	out := make([][]string, len(lanes))
	for i, lane := range lanes {
		out[i] = make([]string, 0, len(lane))
		for _, s := range lane {
			out[i] = append(out[i], s.ID)
		}
	}
	return out
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{name: "disjoint", a: span("a", 9, 0, 10, 0), b: span("b", 11, 0, 12, 0)},
		{name: "touching", a: span("a", 9, 0, 10, 0), b: span("b", 10, 0, 11, 0)},
		{name: "partial", a: span("a", 9, 0, 10, 0), b: span("b", 9, 30, 10, 30), want: true},
		{name: "contained", a: span("a", 9, 0, 12, 0), b: span("b", 10, 0, 11, 0), want: true},
		{name: "identical", a: span("a", 9, 0, 10, 0), b: span("b", 9, 0, 10, 0), want: true},
		{name: "reversed", a: span("a", 10, 0, 9, 0), b: span("b", 9, 30, 9, 45), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			assert.Equal(t, tt.want, Overlaps(tt.b, tt.a))
		})
	}
}

func TestGroupLanes(t *testing.T) {
	tests := []struct {
		name  string
		spans []Span
		want  [][]string
	}{
		{name: "empty", want: [][]string{}},
		{
			name:  "scenario",
			spans: []Span{span("A", 9, 0, 10, 0), span("B", 9, 30, 10, 30), span("C", 11, 0, 12, 0)},
			want:  [][]string{{"A", "C"}, {"B"}},
		},
		{
			name:  "unsorted input",
			spans: []Span{span("C", 11, 0, 12, 0), span("B", 9, 30, 10, 30), span("A", 9, 0, 10, 0)},
			want:  [][]string{{"A", "C"}, {"B"}},
		},
		{
			name:  "pairwise disjoint share one lane",
			spans: []Span{span("A", 8, 0, 9, 0), span("B", 9, 0, 10, 0), span("C", 13, 0, 14, 0), span("D", 10, 0, 10, 30)},
			want:  [][]string{{"A", "B", "D", "C"}},
		},
		{
			name:  "identical spans get a lane each",
			spans: []Span{span("A", 9, 0, 10, 0), span("B", 9, 0, 10, 0), span("C", 9, 0, 10, 0)},
			want:  [][]string{{"A"}, {"B"}, {"C"}},
		},
		{
			name:  "first fit reuses freed lanes",
			spans: []Span{span("A", 9, 0, 11, 0), span("B", 9, 0, 10, 0), span("C", 10, 0, 12, 0), span("D", 11, 0, 12, 0)},
			want:  [][]string{{"B", "C"}, {"A", "D"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(GroupLanes(tt.spans)))
		})
	}
}

func TestGroupLanes_sameLaneIsDisjoint(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		spans := make([]Span, 0, 30)
		for i := 0; i < 30; i++ {
			start := rnd.Intn(16 * 60)
			length := rnd.Intn(180) + 1
			spans = append(spans, Span{
				ID:    fmt.Sprintf("%d-%d", round, i),
				Start: at(6, start),
				End:   at(6, start+length),
			})
		}

		lanes := GroupLanes(spans)
		count := 0
		for _, lane := range lanes {
			count += len(lane)
			for i := range lane {
				for j := i + 1; j < len(lane); j++ {
					a, b := lane[i], lane[j]
					require.True(t, !a.End.After(b.Start) || !b.End.After(a.Start), "%s and %s share a lane", a.ID, b.ID)
				}
			}
		}
		assert.Equal(t, len(spans), count)
	}
}

func TestClusters(t *testing.T) {
	spans := []Span{
		span("A", 9, 0, 10, 0),
		span("B", 9, 30, 11, 0),
		span("C", 10, 30, 11, 30), // overlaps B only
		span("D", 12, 0, 13, 0),
	}
	assert.Equal(t, [][]string{{"A", "B", "C"}, {"D"}}, ids(Clusters(spans)))
}

func TestAssign(t *testing.T) {
	spans := []Span{span("C", 11, 0, 12, 0), span("A", 9, 0, 10, 0), span("B", 9, 30, 10, 30)}
	assert.Equal(t, []Slot{
		{Index: 1, Lane: 0, Lanes: 2},
		{Index: 2, Lane: 1, Lanes: 2},
		{Index: 0, Lane: 0, Lanes: 1}, // C is alone in its cluster: full width
	}, Assign(spans))
}
