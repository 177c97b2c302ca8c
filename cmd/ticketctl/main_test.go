package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/complaint-tickets/internal/auth"
	"github.com/spec-kit/complaint-tickets/internal/domain"
)

const batchCSV = `Complaint_ID,Message,Supplier,Product,Order_ID
C1,Item arrived damaged,Acme,Mug,O1
C2,Wrong color received,Acme,Mug,O2
C3,Package came late,Acme,Plate,O3
C4,Missing strap,Acme,Bag,O4
C5,Changed my mind,Bolt,Hat,O5
`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LEDGER_BACKEND", "csv")
	t.Setenv("LEDGER_PATH", filepath.Join(dir, "tickets.csv"))
	t.Setenv("CLASSIFIER_MODE", "rule")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	t.Setenv("ALERT_RECIPIENT", "qa@example.com")
	t.Setenv("AGGREGATE_THRESHOLD", "3")
	t.Setenv("NOTIFY_PER_TICKET", "true")
	t.Setenv("COUNTING_POLICY", "supplier_issues")
	t.Setenv("USE_EMAIL_ALERTS", "false")
	t.Setenv("SLACK_WEBHOOK_URL", "")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestRunThenList(t *testing.T) {
	dir := setupEnv(t)
	batch := writeFile(t, dir, "batch.csv", batchCSV)

	out, _, err := execute(t, "run", "--file", batch, "--json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var result domain.RunResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(result.Tickets) != 4 {
		t.Fatalf("tickets = %d, want 4", len(result.Tickets))
	}
	if len(result.Notifications) != 4 || result.NotificationsSent() != 0 {
		t.Fatalf("notifications with no channel configured = %+v", result.Notifications)
	}

	out, _, err = execute(t, "tickets", "list", "--json", "--limit", "2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var tickets []domain.Ticket
	if err := json.Unmarshal([]byte(out), &tickets); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(tickets) != 2 {
		t.Fatalf("listed %d tickets, want 2", len(tickets))
	}
	if tickets[0].Issue != "Aggregate alert: 3 supplier issues in upload" {
		t.Fatalf("newest = %+v", tickets[0])
	}

	out, _, err = execute(t, "tickets", "list")
	if err != nil {
		t.Fatalf("list table: %v", err)
	}
	if !strings.Contains(out, "ACME") && !strings.Contains(out, "Acme") {
		t.Fatalf("table output missing supplier:\n%s", out)
	}
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	dir := setupEnv(t)
	batch := writeFile(t, dir, "batch.csv", batchCSV)

	out, _, err := execute(t, "run", "--file", batch, "--json", "--threshold", "5", "--policy", "all_rows", "--notify=false")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var result domain.RunResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatal(err)
	}
	if result.Threshold != 5 || result.Policy != domain.PolicyAllRows {
		t.Fatalf("options not applied: %d %s", result.Threshold, result.Policy)
	}
	// Acme has 4 rows under all_rows, below the threshold of 5.
	if len(result.Tickets) != 3 || len(result.Notifications) != 0 {
		t.Fatalf("tickets=%d notifications=%d", len(result.Tickets), len(result.Notifications))
	}
}

func TestRunRejectsMissingColumns(t *testing.T) {
	dir := setupEnv(t)
	batch := writeFile(t, dir, "batch.csv", "Complaint_ID,Message,Product\nC1,damaged,Mug\n")

	_, _, err := execute(t, "run", "--file", batch)
	if err == nil || !strings.Contains(err.Error(), "Supplier") {
		t.Fatalf("err = %v, want missing Supplier", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "tickets.csv")); !os.IsNotExist(statErr) {
		t.Fatalf("ledger created for rejected batch: %v", statErr)
	}
}

func TestTokenIssue(t *testing.T) {
	setupEnv(t)

	out, _, err := execute(t, "token", "issue", "--role", "operator", "--subject", "ci")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := auth.NewTokenManager("cli-secret", time.Hour).ParseToken(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != auth.RoleOperator || claims.Subject != "ci" {
		t.Fatalf("claims = %+v", claims)
	}

	if _, _, err := execute(t, "token", "issue", "--role", "admin"); err == nil {
		t.Fatal("unknown role accepted")
	}
}

func TestRunDefaultsWithoutRecipient(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("ALERT_RECIPIENT", "")
	batch := writeFile(t, dir, "batch.csv", batchCSV)

	out, _, err := execute(t, "run", "--file", batch, "--json")
	if err != nil {
		t.Fatalf("run with notify on and no recipient: %v", err)
	}
	var result domain.RunResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Tickets) != 4 || len(result.Notifications) != 4 || result.NotificationsSent() != 0 {
		t.Fatalf("tickets=%d notifications=%+v", len(result.Tickets), result.Notifications)
	}
}
