package database

import "strings"

// parseTableName splits a possibly schema-qualified table name.
func parseTableName(full string) (schema, table string) {
	if idx := strings.LastIndex(full, "."); idx != -1 {
		return full[:idx], full[idx+1:]
	}
	return "", full
}

// normalizeDriverName maps vendor specific driver strings to the canonical
// names exposed by Database.DriverName.
func normalizeDriverName(name string) string {
	switch strings.ToLower(name) {
	case "pg", "pgx", "postgres", "postgresql":
		return "postgres"
	case "sqlite", "sqlite3", "sqliteshim":
		return "sqlite"
	case "mysql":
		return "mysql"
	default:
		return strings.ToLower(name)
	}
}
