package domain

// Index groups a Dataset by project id and resolves members, clients and
// projects by id. Build it once per aggregation pass; lookups never scan the
// source slices again.
type Index struct {
	documents   map[string][]Document
	expenses    map[string][]Expense
	timeEntries map[string][]TimeEntry
	adjustments map[string][]Adjustment
	members     map[string]TeamMember
	clients     map[string]Client
	projects    map[string]Project
}

// NewIndex builds the per-project groupings. Records without a project id are
// kept under the empty key and therefore never match a real project.
func NewIndex(ds Dataset) *Index {
	idx := &Index{
		documents:   make(map[string][]Document),
		expenses:    make(map[string][]Expense),
		timeEntries: make(map[string][]TimeEntry),
		adjustments: make(map[string][]Adjustment),
		members:     make(map[string]TeamMember, len(ds.Team)),
		clients:     make(map[string]Client, len(ds.Clients)),
		projects:    make(map[string]Project, len(ds.Projects)),
	}
	for _, d := range ds.Documents {
		idx.documents[d.ProjectID] = append(idx.documents[d.ProjectID], d)
	}
	for _, e := range ds.Expenses {
		idx.expenses[e.ProjectID] = append(idx.expenses[e.ProjectID], e)
	}
	for _, t := range ds.TimeEntries {
		idx.timeEntries[t.ProjectID] = append(idx.timeEntries[t.ProjectID], t)
	}
	for _, a := range ds.Adjustments {
		idx.adjustments[a.ProjectID] = append(idx.adjustments[a.ProjectID], a)
	}
	for _, m := range ds.Team {
		if _, exists := idx.members[m.ID]; !exists {
			idx.members[m.ID] = m
		}
	}
	for _, c := range ds.Clients {
		if _, exists := idx.clients[c.ID]; !exists {
			idx.clients[c.ID] = c
		}
	}
	for _, p := range ds.Projects {
		if _, exists := idx.projects[p.ID]; !exists {
			idx.projects[p.ID] = p
		}
	}
	return idx
}

// Documents returns the quotes and invoices attached to a project.
func (i *Index) Documents(projectID string) []Document {
	if projectID == "" {
		return nil
	}
	return i.documents[projectID]
}

// Expenses returns the expenses attached to a project.
func (i *Index) Expenses(projectID string) []Expense {
	if projectID == "" {
		return nil
	}
	return i.expenses[projectID]
}

// TimeEntries returns the timesheet lines attached to a project.
func (i *Index) TimeEntries(projectID string) []TimeEntry {
	if projectID == "" {
		return nil
	}
	return i.timeEntries[projectID]
}

// Adjustments returns the manual corrections attached to a project.
func (i *Index) Adjustments(projectID string) []Adjustment {
	if projectID == "" {
		return nil
	}
	return i.adjustments[projectID]
}

// Member looks up a team member. The first record wins on duplicate ids.
func (i *Index) Member(id string) (TeamMember, bool) {
	m, ok := i.members[id]
	return m, ok
}

// Client looks up a client. The first record wins on duplicate ids.
func (i *Index) Client(id string) (Client, bool) {
	c, ok := i.clients[id]
	return c, ok
}

// Project looks up a project by id.
func (i *Index) Project(id string) (Project, bool) {
	p, ok := i.projects[id]
	return p, ok
}
