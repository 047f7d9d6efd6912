package domain

// Index names of the three document streams.
const (
	IndexSessions = "sessions"
	IndexCounters = "counters"
	IndexProjects = "projects"
)

// Document is one record bound for a document store. ID is unique and
// increasing within its index.
type Document struct {
	Index string
	ID    int
	Body  any
}

// Stream is the ordered documents of one index.
type Stream struct {
	Index     string
	Documents []Document
}

// BuildStreams serializes folded sessions into the sessions, counters and
// projects streams, numbering documents from zero within each stream.
func BuildStreams(sessions []*Session) []Stream {
	var sessionDocs, counterDocs, projectDocs []Document
	for _, s := range sessions {
		sessionDocs = append(sessionDocs, Document{Index: IndexSessions, ID: len(sessionDocs), Body: s.Document()})
		for _, c := range s.CounterDocuments() {
			counterDocs = append(counterDocs, Document{Index: IndexCounters, ID: len(counterDocs), Body: c})
		}
		for _, p := range s.ProjectDocuments() {
			projectDocs = append(projectDocs, Document{Index: IndexProjects, ID: len(projectDocs), Body: p})
		}
	}
	return []Stream{
		{Index: IndexSessions, Documents: sessionDocs},
		{Index: IndexCounters, Documents: counterDocs},
		{Index: IndexProjects, Documents: projectDocs},
	}
}
