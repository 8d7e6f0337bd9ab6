package subclass

import "context"

type mockLookup struct {
	descendants map[string]map[string]string
	err         error
	calls       [][]string
}

func (m *mockLookup) Descendants(_ context.Context, curies []string) (map[string]map[string]string, error) {
	m.calls = append(m.calls, curies)
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]map[string]string)
	for _, c := range curies {
		if d, ok := m.descendants[c]; ok {
			out[c] = d
		}
	}
	return out, nil
}
