package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statementText = "ICICI BANK LTD\n" +
	"01/04/2024 SALARY CREDIT HRMS 50,000.00 CR 75,000.00\n" +
	"02/04/2024 UPI/SWIGGY/123 450.00 74,550.00\f" +
	"03/04/2024 BY CASH DEPOSIT 1,50,000.00 CR 2,24,550.00\n"

// run executes the command tree in an empty working directory so no stray
// .env file is picked up.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out, errOut bytes.Buffer
	root := NewRootCommand(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeStatement(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "april.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "statement-analyzer v"+Version+"\n", out)
}

func TestConvert_WritesCSVNextToInput(t *testing.T) {
	input := writeStatement(t, statementText)

	out, _, err := run(t, "convert", "--category", input)
	require.NoError(t, err)

	assert.Contains(t, out, "Bank: icici, strategy: direct")
	assert.Contains(t, out, "Found 3 transaction(s)")
	assert.Contains(t, out, "Flagged for review: 1 transaction(s)")

	data, err := os.ReadFile(strings.TrimSuffix(input, ".txt") + ".csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,Description,Credit,Debit,Balance,Category", lines[0])
	assert.Equal(t, "03/04/2024,BY CASH DEPOSIT,150000.00,0.00,224550.00,Suspicious Cash Deposit", lines[3])
}

func TestConvert_StdoutOutput(t *testing.T) {
	input := writeStatement(t, statementText)

	out, errOut, err := run(t, "convert", "--output", "-", input)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Date,Description,Credit,Debit,Balance\n"), out)
	assert.Contains(t, errOut, "Processing:")
	assert.NotContains(t, out, "Processing:")
}

func TestConvert_XLSXReport(t *testing.T) {
	input := writeStatement(t, statementText)
	report := filepath.Join(t.TempDir(), "report.xlsx")

	_, _, err := run(t, "convert", "--xlsx", report, input)
	require.NoError(t, err)

	info, err := os.Stat(report)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestConvert_ForcedBank(t *testing.T) {
	input := writeStatement(t, statementText)

	out, _, err := run(t, "convert", "--bank", "sbi", "--output", filepath.Join(t.TempDir(), "x.csv"), input)
	require.NoError(t, err)
	assert.Contains(t, out, "Bank: sbi, strategy: fallback")
}

func TestConvert_UnknownBank(t *testing.T) {
	input := writeStatement(t, statementText)

	_, _, err := run(t, "convert", "--bank", "metro", input)
	assert.ErrorContains(t, err, "unsupported bank type")
}

func TestConvert_EmptyResult(t *testing.T) {
	input := writeStatement(t, "Dear customer,\nno transactions this month.\n")

	out, _, err := run(t, "convert", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 file(s) failed")
	assert.Contains(t, out, "No transactions found")

	_, statErr := os.Stat(strings.TrimSuffix(input, ".txt") + ".csv")
	assert.True(t, os.IsNotExist(statErr))
}

func TestConvert_MissingFile(t *testing.T) {
	_, errOut, err := run(t, "convert", filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.Contains(t, errOut, "input file not found")
}

func TestConvert_OutputWithSeveralInputs(t *testing.T) {
	a := writeStatement(t, statementText)
	b := writeStatement(t, statementText)

	_, _, err := run(t, "convert", "--output", "all.csv", a, b)
	assert.ErrorContains(t, err, "single input file")
}
