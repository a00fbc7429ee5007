// Package report is the user-facing status channel of the operators. Each
// entry has a severity and a localised, human-readable message.
package report

import "fmt"

// Level is the severity of a report entry
type Level int

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// Entry is one reported message
type Entry struct {
	Level   Level
	Message string
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s", e.Level, e.Message)
}

// Log collects entries. OnEntry, when set, sees every entry as it is added.
type Log struct {
	catalog *Catalog
	entries []Entry
	OnEntry func(Entry)
}

// NewLog creates a log rendering through catalog; nil means English
func NewLog(catalog *Catalog) *Log {
	if catalog == nil {
		catalog = NewCatalog("")
	}
	return &Log{catalog: catalog}
}

func (l *Log) Info(id string, data map[string]any)    { l.add(Info, id, data) }
func (l *Log) Warning(id string, data map[string]any) { l.add(Warning, id, data) }
func (l *Log) Error(id string, data map[string]any)   { l.add(Error, id, data) }

func (l *Log) add(level Level, id string, data map[string]any) {
	entry := Entry{Level: level, Message: l.catalog.Message(id, data)}
	l.entries = append(l.entries, entry)
	if l.OnEntry != nil {
		l.OnEntry(entry)
	}
}

// Entries returns all entries in the order they were reported
func (l *Log) Entries() []Entry {
	return l.entries
}

// Count returns how many entries have the given level
func (l *Log) Count(level Level) int {
	n := 0
	for _, e := range l.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}
