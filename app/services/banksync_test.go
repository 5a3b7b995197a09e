package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatement(t *testing.T) {
	input := `reference,variable_symbol,sender,amount,date,note
TX-1001,4201,Jan Novak,500.00,2025-09-01,September trip
TX-1002,4202,Eva Mala,250.50,2025-09-02,
`
	statementRows, err := ParseStatement(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, statementRows, 2)

	assert.Equal(t, "TX-1001", statementRows[0].Reference)
	assert.Equal(t, "4201", statementRows[0].VariableSymbol)
	assert.Equal(t, "Jan Novak", statementRows[0].Sender)
	assert.True(t, statementRows[0].Amount.Equal(dec("500")))
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), statementRows[0].ReceivedAt)
	assert.Equal(t, "September trip", statementRows[0].Note)

	assert.True(t, statementRows[1].Amount.Equal(dec("250.50")))
	assert.Empty(t, statementRows[1].Note)
}

func TestParseStatementTrimsWhitespace(t *testing.T) {
	input := "reference,variable_symbol,sender,amount,date,note\n TX-1 , 4201 , Jan , 10.00 , 2025-09-01 , ok \n"

	statementRows, err := ParseStatement(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, statementRows, 1)
	assert.Equal(t, "TX-1", statementRows[0].Reference)
	assert.Equal(t, "Jan", statementRows[0].Sender)
}

func TestParseStatementEmpty(t *testing.T) {
	_, err := ParseStatement(strings.NewReader(""))

	assert.Error(t, err)
}

func TestParseStatementRejectsWrongHeader(t *testing.T) {
	input := `id,symbol,from,amount,date,note
TX-1,4201,Jan,10.00,2025-09-01,
`
	_, err := ParseStatement(strings.NewReader(input))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected column")
}

func TestParseStatementRejectsInvalidAmount(t *testing.T) {
	input := `reference,variable_symbol,sender,amount,date,note
TX-1,4201,Jan,ten,2025-09-01,
`
	_, err := ParseStatement(strings.NewReader(input))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseStatementRejectsNegativeAmount(t *testing.T) {
	input := `reference,variable_symbol,sender,amount,date,note
TX-1,4201,Jan,-10.00,2025-09-01,
`
	_, err := ParseStatement(strings.NewReader(input))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")
}

func TestParseStatementRejectsInvalidDate(t *testing.T) {
	input := `reference,variable_symbol,sender,amount,date,note
TX-1,4201,Jan,10.00,01/09/2025,
`
	_, err := ParseStatement(strings.NewReader(input))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestFilterNewRowsSkipsExistingReferences(t *testing.T) {
	statementRows := []StatementRow{
		{Reference: "TX-1", Amount: dec("10")},
		{Reference: "TX-2", Amount: dec("20")},
		{Reference: "TX-3", Amount: dec("30")},
	}

	// TX-2 was imported by an earlier run; re-importing the export must not
	// record it again.
	fresh, duplicates, err := filterNewRows(statementRows, func(ref string) (bool, error) {
		return ref == "TX-2", nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, duplicates)
	require.Len(t, fresh, 2)
	assert.Equal(t, "TX-1", fresh[0].Reference)
	assert.Equal(t, "TX-3", fresh[1].Reference)
}

func TestFilterNewRowsSkipsRepeatsWithinOneExport(t *testing.T) {
	statementRows := []StatementRow{
		{Reference: "TX-1", Amount: dec("10")},
		{Reference: "TX-1", Amount: dec("10")},
	}

	fresh, duplicates, err := filterNewRows(statementRows, func(string) (bool, error) {
		return false, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, duplicates)
	assert.Len(t, fresh, 1)
}

func TestFilterNewRowsKeepsRowsWithoutReference(t *testing.T) {
	statementRows := []StatementRow{
		{Amount: dec("10")},
		{Amount: dec("20")},
	}

	// No reference means no dedupe key; the lookup must not even run.
	fresh, duplicates, err := filterNewRows(statementRows, func(string) (bool, error) {
		t.Fatal("lookup called for a row without a reference")
		return false, nil
	})

	require.NoError(t, err)
	assert.Zero(t, duplicates)
	assert.Len(t, fresh, 2)
}

func TestFilterNewRowsPropagatesLookupError(t *testing.T) {
	lookupErr := errors.New("connection reset")

	_, _, err := filterNewRows([]StatementRow{{Reference: "TX-1"}}, func(string) (bool, error) {
		return false, lookupErr
	})

	assert.ErrorIs(t, err, lookupErr)
}
