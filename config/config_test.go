package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_TYPE", "SQLITE_PATH", "DB_PORT", "MAX_CONVERSATIONS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.StoreType != "sqlite" {
		t.Errorf("StoreType = %q, want sqlite", cfg.StoreType)
	}
	if cfg.DSN() != "chat_history.sqlite" {
		t.Errorf("DSN = %q, want chat_history.sqlite", cfg.DSN())
	}
}

func TestDSNPostgres(t *testing.T) {
	cfg := &Config{
		StoreType:  "postgres",
		DBHost:     "db.internal",
		DBPort:     "5432",
		DBUser:     "chat",
		DBPassword: "secret",
		DBDatabase: "aiweb",
	}
	want := "host=db.internal user=chat password=secret dbname=aiweb port=5432 sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

func TestDSNMySQL(t *testing.T) {
	cfg := &Config{
		StoreType:  "mysql",
		DBHost:     "localhost",
		DBPort:     "3306",
		DBUser:     "root",
		DBPassword: "pw",
		DBDatabase: "aiweb",
	}
	want := "root:pw@tcp(localhost:3306)/aiweb?charset=utf8mb4&parseTime=True&loc=Local"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

func TestDBPortDefaultsPerDriver(t *testing.T) {
	t.Setenv("DB_PORT", "")

	t.Setenv("STORE_TYPE", "postgres")
	if cfg := Load(); cfg.DBPort != "5432" {
		t.Errorf("postgres DBPort = %q, want 5432", cfg.DBPort)
	}

	t.Setenv("STORE_TYPE", "mysql")
	if cfg := Load(); cfg.DBPort != "3306" {
		t.Errorf("mysql DBPort = %q, want 3306", cfg.DBPort)
	}
}
