// Package testutil provides reusable fixtures for mvq tests.
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// Member is one row of the membership fixture.
type Member struct {
	UserID      int64
	Email       string
	PackageID   int64
	PackageName string
	Active      bool
	StartDate   time.Time
}

// DefaultMembers is the fixture most tests run against.
var DefaultMembers = []Member{
	{1, "a@x.io", 100, "basic", true, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	{2, "b@x.io", 150, "pro", true, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)},
	{3, "c@y.io", 200, "pro plus", false, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	{4, "d@y.io", 50, "trial", false, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)},
}

const fixtureSchema = `
CREATE TABLE members (
	user_id INTEGER, email TEXT, package_id INTEGER, package_name TEXT,
	package_active BOOLEAN, start_date TIMESTAMP
);
CREATE VIEW %s AS SELECT * FROM members;
`

// MembershipDB is a temporary SQLite file holding a members table and a
// view over it.
type MembershipDB struct {
	Path string
	Dir  string

	t       *testing.T
	view    string
	members []Member
}

// NewMembershipDB creates a fixture builder. Call Build to write the file.
func NewMembershipDB(t *testing.T) *MembershipDB {
	t.Helper()
	return &MembershipDB{t: t, view: "membershipMV"}
}

// WithView names the view created over the members table.
func (m *MembershipDB) WithView(name string) *MembershipDB {
	m.view = name
	return m
}

// WithMembers replaces the fixture rows.
func (m *MembershipDB) WithMembers(members ...Member) *MembershipDB {
	m.members = append([]Member(nil), members...)
	return m
}

// Build creates the database file. Without WithMembers it loads
// DefaultMembers.
func (m *MembershipDB) Build() *MembershipDB {
	m.t.Helper()
	if m.members == nil {
		m.members = DefaultMembers
	}

	m.Dir = m.t.TempDir()
	m.Path = filepath.Join(m.Dir, "members.db")

	db, err := sql.Open("sqlite", m.Path)
	if err != nil {
		m.t.Fatalf("failed to open fixture db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(fmt.Sprintf(fixtureSchema, m.view)); err != nil {
		m.t.Fatalf("failed to create fixture schema: %v", err)
	}
	for _, mem := range m.members {
		_, err := db.Exec(`INSERT INTO members VALUES (?, ?, ?, ?, ?, ?)`,
			mem.UserID, mem.Email, mem.PackageID, mem.PackageName, mem.Active,
			mem.StartDate.UTC().Format("2006-01-02 15:04:05"))
		if err != nil {
			m.t.Fatalf("failed to insert member %d: %v", mem.UserID, err)
		}
	}
	return m
}

// Exec runs statements against the fixture, e.g. to break it on purpose.
func (m *MembershipDB) Exec(stmt string, args ...any) {
	m.t.Helper()
	db, err := sql.Open("sqlite", m.Path)
	if err != nil {
		m.t.Fatalf("failed to open fixture db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(stmt, args...); err != nil {
		m.t.Fatalf("fixture exec failed: %v", err)
	}
}

// WriteConfig writes an mvq config file pointing at the fixture and returns
// its path. Extra TOML is appended verbatim.
func (m *MembershipDB) WriteConfig(extra ...string) string {
	m.t.Helper()
	var sb strings.Builder
	sb.WriteString("[database]\n")
	sb.WriteString("driver = \"sqlite\"\n")
	fmt.Fprintf(&sb, "dsn = %q\n", filepath.ToSlash(m.Path))
	if m.view != "membershipMV" {
		fmt.Fprintf(&sb, "\n[query]\nview = %q\n", m.view)
	}
	for _, e := range extra {
		sb.WriteString("\n")
		sb.WriteString(e)
		sb.WriteString("\n")
	}

	path := filepath.Join(m.Dir, "config.toml")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		m.t.Fatalf("failed to write config: %v", err)
	}
	return path
}
