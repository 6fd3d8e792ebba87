package ranking

import (
	"github.com/filfund/pairrank/internal/domain"
)

// WinMatrix aggregates pairwise outcomes into a directed win-count
// structure over interned entity indices. Only observed wins are stored;
// losses are implicit as the opponent's win count. Index-based storage
// avoids repeated name hashing in the fitter's inner loop.
//
// WinMatrix is built once by BuildWinMatrix and read-only afterwards.
type WinMatrix struct {
	// names maps an interned index back to the entity name.
	names []string
	// index maps an entity name to its interned index.
	index map[string]int
	// wins[i] maps an opponent index j to the number of wins of i over j.
	// Every registered entity has an entry, possibly empty.
	wins []map[int]int
	// records holds per-entity (wins, total) counts, indexed like names.
	records []domain.Record
}

// BuildWinMatrix aggregates the given outcomes into a WinMatrix.
// Both participants of every outcome are registered as known entities,
// so an entity that never wins still receives a strength-vector entry.
// Outcomes are assumed valid; ingestion rejects malformed rows upstream.
func BuildWinMatrix(outcomes []domain.Outcome) *WinMatrix {
	m := &WinMatrix{index: make(map[string]int)}
	for _, o := range outcomes {
		winner := m.intern(o.Winner)
		loser := m.intern(o.Loser())

		m.wins[winner][loser]++
		m.records[winner].Wins++
		m.records[winner].Total++
		m.records[loser].Total++
	}
	return m
}

// intern returns the index for name, registering it on first sight.
func (m *WinMatrix) intern(name string) int {
	if i, ok := m.index[name]; ok {
		return i
	}
	i := len(m.names)
	m.index[name] = i
	m.names = append(m.names, name)
	m.wins = append(m.wins, make(map[int]int))
	m.records = append(m.records, domain.Record{})
	return i
}

// Len returns the number of registered entities.
func (m *WinMatrix) Len() int { return len(m.names) }

// Name returns the entity name for an interned index.
func (m *WinMatrix) Name(i int) string { return m.names[i] }

// Index returns the interned index for name and whether it is registered.
func (m *WinMatrix) Index(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// WinsAgainst returns the number of observed wins of entity i over j.
func (m *WinMatrix) WinsAgainst(i, j int) int { return m.wins[i][j] }

// Matches returns the total number of decided matches between i and j:
// wins of i over j plus wins of j over i.
func (m *WinMatrix) Matches(i, j int) int {
	return m.wins[i][j] + m.wins[j][i]
}

// TotalWins returns the total number of wins recorded for entity i.
func (m *WinMatrix) TotalWins(i int) int { return m.records[i].Wins }

// Record returns the (wins, total) record for the named entity.
// Unknown entities report a zero record.
func (m *WinMatrix) Record(name string) domain.Record {
	if i, ok := m.index[name]; ok {
		return m.records[i]
	}
	return domain.Record{}
}

// Records returns a snapshot of every entity's record keyed by name.
func (m *WinMatrix) Records() map[string]domain.Record {
	out := make(map[string]domain.Record, len(m.names))
	for i, name := range m.names {
		out[name] = m.records[i]
	}
	return out
}
