package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raycare/hospital/internal/domain/catalog"
)

// fakeRow stands in for a pgx.Row, copying its values into the scan targets.
type fakeRow []any

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r) {
		return fmt.Errorf("scan: %d targets for %d columns", len(dest), len(r))
	}
	for i, v := range r {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

// rowOf renders c the way PostgreSQL hands it back: microsecond precision
// in the session zone of the driver.
func rowOf(c *Consultation, session *time.Location) fakeRow {
	return fakeRow{
		c.ID,
		c.RegistrationDate.Truncate(time.Microsecond).In(session),
		c.PatientID, c.DoctorID, c.RoomID,
		c.ConsultationDate.In(session),
		c.Day.Midnight(time.UTC),
	}
}

func TestScanConsultation_MatchesBookedJSON(t *testing.T) {
	loc := time.FixedZone("CET", 60*60)
	f := newFixture(t, catalog.DefaultSeedConfig(), EngineConfig{Location: loc})

	booked, err := f.engine.Schedule(context.Background(), Request{
		PatientID:    uuid.New(),
		Condition:    ConditionBreastCancer,
		RegisteredAt: time.Date(2024, time.March, 10, 22, 15, 30, 987654321, time.UTC),
	})
	require.NoError(t, err)
	want, err := json.Marshal(booked)
	require.NoError(t, err)

	for _, session := range []*time.Location{time.UTC, time.Local, time.FixedZone("EST", -5*60*60)} {
		t.Run(session.String(), func(t *testing.T) {
			got, err := scanConsultation(rowOf(booked, session), loc)
			require.NoError(t, err)

			body, err := json.Marshal(got)
			require.NoError(t, err)
			assert.Equal(t, string(want), string(body))
			assert.Equal(t, booked.Day, got.Day)
		})
	}
}

func TestNewLedgerPG_DefaultsToUTC(t *testing.T) {
	l := NewLedgerPG(nil, nil).(*ledgerPG)
	assert.Equal(t, time.UTC, l.loc)
}
