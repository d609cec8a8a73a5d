// internal/importer/importer_test.go
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"compliance-engine/internal/common/logger"
	"compliance-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeWriter struct {
	batches  [][]models.WatchlistEntity
	failures int // fail the first N batches
}

func (f *fakeWriter) InsertBatch(ctx context.Context, entities []models.WatchlistEntity) error {
	batch := make([]models.WatchlistEntity, len(entities))
	copy(batch, entities)
	f.batches = append(f.batches, batch)
	if len(f.batches) <= f.failures {
		return errors.New("insert failed")
	}
	return nil
}

func (f *fakeWriter) inserted() int {
	total := 0
	for i, b := range f.batches {
		if i >= f.failures {
			total += len(b)
		}
	}
	return total
}

func createTestImporter(t *testing.T, writer WatchlistWriter, batchSize int) *Importer {
	return New(writer, Config{BatchSize: batchSize}, logger.NewTestLogger(t))
}

func ofacRow(name, entityType string) map[string]string {
	return map[string]string{
		"SDN_Name": name,
		"SDN_Type": entityType,
		"Program":  "SDGT",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestImporter_ImportRows_Success(t *testing.T) {
	writer := &fakeWriter{}
	im := createTestImporter(t, writer, 100)

	headers := []string{"SDN_Name", "SDN_Type", "Program"}
	mapping := MapColumns(headers, DetectFormat(headers))

	rows := []map[string]string{
		ofacRow("John Doe", "Individual"),
		ofacRow("Acme Trading LLC", "Entity"),
	}

	summary, err := im.ImportRows(context.Background(), "OFAC SDN", rows, mapping)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalRows)
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 0, summary.Errors)
	assert.Equal(t, models.FormatOFACSDN, summary.DetectedFormat)

	require.Len(t, writer.batches, 1)
	first := writer.batches[0][0]
	assert.Equal(t, "John Doe", first.Name)
	assert.Equal(t, models.EntityIndividual, first.EntityType)
	assert.Equal(t, "OFAC SDN", first.ListName)
	assert.Equal(t, models.StatusActive, first.Status)
	assert.NotEmpty(t, first.ID)
}

func TestImporter_ImportRows_BadRowsSkippedNotFatal(t *testing.T) {
	writer := &fakeWriter{}
	im := createTestImporter(t, writer, 100)

	headers := []string{"SDN_Name", "SDN_Type", "Program"}
	mapping := MapColumns(headers, DetectFormat(headers))

	rows := []map[string]string{
		ofacRow("John Doe", "Individual"),
		ofacRow("", "Individual"),  // missing name
		ofacRow("X", "Individual"), // name too short
		ofacRow("Acme Trading LLC", "Entity"),
	}

	summary, err := im.ImportRows(context.Background(), "OFAC SDN", rows, mapping)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalRows)
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 2, summary.Errors)
	assert.Equal(t, summary.TotalRows, summary.Imported+summary.Errors)
}

func TestImporter_ImportRows_BatchChunking(t *testing.T) {
	writer := &fakeWriter{}
	im := createTestImporter(t, writer, 3)

	headers := []string{"SDN_Name", "SDN_Type", "Program"}
	mapping := MapColumns(headers, DetectFormat(headers))

	var rows []map[string]string
	for i := 0; i < 8; i++ {
		rows = append(rows, ofacRow(fmt.Sprintf("Entity Number %d", i), "Entity"))
	}

	summary, err := im.ImportRows(context.Background(), "OFAC SDN", rows, mapping)
	require.NoError(t, err)

	assert.Equal(t, 8, summary.Imported)
	require.Len(t, writer.batches, 3)
	assert.Len(t, writer.batches[0], 3)
	assert.Len(t, writer.batches[1], 3)
	assert.Len(t, writer.batches[2], 2)
}

func TestImporter_ImportRows_FailedBatchCountsAsErrors(t *testing.T) {
	writer := &fakeWriter{failures: 1}
	im := createTestImporter(t, writer, 2)

	headers := []string{"SDN_Name", "SDN_Type", "Program"}
	mapping := MapColumns(headers, DetectFormat(headers))

	rows := []map[string]string{
		ofacRow("Entity One Ltd", "Entity"),
		ofacRow("Entity Two Ltd", "Entity"),
		ofacRow("Entity Three Ltd", "Entity"),
	}

	summary, err := im.ImportRows(context.Background(), "OFAC SDN", rows, mapping)
	require.NoError(t, err)

	// First batch of 2 fails, second batch of 1 succeeds.
	assert.Equal(t, 2, summary.Errors)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, summary.TotalRows, summary.Imported+summary.Errors)
	assert.Equal(t, writer.inserted(), summary.Imported)
}

func TestImporter_ImportRows_Empty(t *testing.T) {
	writer := &fakeWriter{}
	im := createTestImporter(t, writer, 10)

	summary, err := im.ImportRows(context.Background(), "OFAC SDN", nil,
		models.ColumnMapping{DetectedFormat: models.FormatGeneric, Fields: map[models.SemanticField]string{}})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.TotalRows)
	assert.Empty(t, writer.batches)
}

// ==========================
// CSV End-to-End Tests
// ==========================

func TestImporter_ImportCSV(t *testing.T) {
	csvData := strings.Join([]string{
		"SDN_Name,SDN_Type,Program,aka,Country,List_Date",
		`John Doe Sanctions Test,Individual,SDGT,"J. Doe; Johnny Doe",usa,03/15/2023`,
		"Acme Trading LLC,Entity,IRAN,,uae,not-a-date",
		",Individual,SDGT,,,", // unnamed row is skipped
	}, "\n")

	writer := &fakeWriter{}
	im := createTestImporter(t, writer, 100)

	summary, err := im.ImportCSV(context.Background(), "OFAC SDN", strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, models.FormatOFACSDN, summary.DetectedFormat)
	assert.Equal(t, 3, summary.TotalRows)
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 1, summary.Errors)

	require.Len(t, writer.batches, 1)
	require.Len(t, writer.batches[0], 2)

	john := writer.batches[0][0]
	assert.Equal(t, "John Doe Sanctions Test", john.Name)
	assert.Equal(t, []string{"J. Doe", "Johnny Doe"}, john.Aliases)
	assert.Equal(t, "United States", john.Country)
	assert.Equal(t, "2023-03-15", john.ListDate)

	acme := writer.batches[0][1]
	assert.Equal(t, models.EntityOrg, acme.EntityType)
	assert.Equal(t, "United Arab Emirates", acme.Country)
	assert.Equal(t, "not-a-date", acme.ListDate, "unparsable dates pass through raw")
}

func TestImporter_ImportCSV_MalformedHeader(t *testing.T) {
	writer := &fakeWriter{}
	im := createTestImporter(t, writer, 100)

	_, err := im.ImportCSV(context.Background(), "OFAC SDN", strings.NewReader(""))
	require.Error(t, err)
}
