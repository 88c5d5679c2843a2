package autotest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
	_ "liyu1981.xyz/water-quality-dashboard/pkg/testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		form    Form
		want    Settings
		wantErr string
	}{
		{
			name:    "missing station",
			form:    Form{Mode: "hourly", IntervalHours: "2", Enabled: "1"},
			wantErr: MessageNoStation,
		},
		{
			name:    "zero station",
			form:    Form{StationID: "0", Mode: "hourly", IntervalHours: "2", Enabled: "1"},
			wantErr: MessageNoStation,
		},
		{
			name: "hourly",
			form: Form{StationID: "3", Mode: "hourly", IntervalHours: "2", Enabled: "1"},
			want: Settings{StationID: 3, Schedule: Hourly{IntervalHours: 2}, Enabled: true},
		},
		{
			name:    "hourly enabled without interval",
			form:    Form{StationID: "3", Mode: "hourly", Enabled: "1"},
			wantErr: MessageMissingFields,
		},
		{
			name:    "daily enabled without time",
			form:    Form{StationID: "3", Mode: "daily", IntervalDays: "1", Enabled: "true"},
			wantErr: MessageMissingFields,
		},
		{
			name: "daily",
			form: Form{StationID: "3", Mode: "daily", IntervalDays: "2", TimeOfDay: "08:30", Enabled: "1"},
			want: Settings{StationID: 3, Schedule: Daily{IntervalDays: 2, TimeOfDay: "08:30"}, Enabled: true},
		},
		{
			name:    "monthly enabled without day",
			form:    Form{StationID: "3", Mode: "monthly", IntervalMonths: "1", TimeOfDay: "08:30", Enabled: "1"},
			wantErr: MessageMissingFields,
		},
		{
			name: "monthly",
			form: Form{StationID: "3", Mode: "monthly", IntervalMonths: "1", DayOfMonth: "15", TimeOfDay: "23:05", Enabled: "1"},
			want: Settings{StationID: 3, Schedule: Monthly{IntervalMonths: 1, DayOfMonth: 15, TimeOfDay: "23:05"}, Enabled: true},
		},
		{
			name: "disabled schedule takes defaults",
			form: Form{StationID: "3", Mode: "monthly", Enabled: "0"},
			want: Settings{StationID: 3, Schedule: Monthly{IntervalMonths: 1, DayOfMonth: 1, TimeOfDay: DefaultTimeOfDay}},
		},
		{
			name: "empty mode is hourly",
			form: Form{StationID: "3"},
			want: Settings{StationID: 3, Schedule: Hourly{IntervalHours: 1}},
		},
		{
			name:    "unknown mode",
			form:    Form{StationID: "3", Mode: "weekly"},
			wantErr: `Unknown automatic mode "weekly".`,
		},
		{
			name:    "day out of range",
			form:    Form{StationID: "3", Mode: "monthly", IntervalMonths: "1", DayOfMonth: "32", TimeOfDay: "08:00", Enabled: "1"},
			wantErr: "day_of_month must be a whole number between 1 and 31.",
		},
		{
			name:    "negative interval",
			form:    Form{StationID: "3", Mode: "hourly", IntervalHours: "-1", Enabled: "1"},
			wantErr: "interval_hours must be a positive whole number.",
		},
		{
			name:    "bad time",
			form:    Form{StationID: "3", Mode: "daily", IntervalDays: "1", TimeOfDay: "25:00", Enabled: "1"},
			wantErr: "time_of_day must be formatted as HH:MM.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.form.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateSentinels(t *testing.T) {
	_, err := Form{}.Validate()
	assert.ErrorIs(t, err, ErrNoStation)

	_, err = Form{StationID: "1", Mode: "monthly", Enabled: "1"}.Validate()
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestRowFlattening(t *testing.T) {
	monthly := Settings{StationID: 2, Schedule: Monthly{IntervalMonths: 2, DayOfMonth: 10, TimeOfDay: "07:00"}, Enabled: true}
	row := monthly.ToRow()

	assert.Equal(t, models.ModeMonthly, row.Mode)
	assert.Nil(t, row.IntervalHours)
	assert.Nil(t, row.IntervalDays)
	require.NotNil(t, row.IntervalMonths)
	assert.Equal(t, 2, *row.IntervalMonths)
	assert.Equal(t, 10, *row.DayOfMonth)
	assert.Equal(t, "07:00", *row.TimeOfDay)
	assert.Equal(t, monthly, FromRow(row))

	hourly := Settings{StationID: 2, Schedule: Hourly{IntervalHours: 6}}
	row = hourly.ToRow()
	assert.Nil(t, row.TimeOfDay)
	assert.Nil(t, row.DayOfMonth)
	assert.Equal(t, hourly, FromRow(row))

	daily := Settings{StationID: 2, Schedule: Daily{IntervalDays: 3, TimeOfDay: "12:00"}}
	assert.Equal(t, daily, FromRow(daily.ToRow()))
}

func TestFromRowFillsNullColumns(t *testing.T) {
	s := FromRow(models.AutoTestSettings{StationID: 1, Mode: models.ModeDaily})
	assert.Equal(t, Daily{IntervalDays: 1, TimeOfDay: DefaultTimeOfDay}, s.Schedule)
}

func TestView(t *testing.T) {
	v := Defaults(4).View()
	assert.Equal(t, View{
		StationID:      4,
		Mode:           models.ModeHourly,
		IntervalHours:  1,
		IntervalDays:   1,
		DailyTime:      "00:00",
		IntervalMonths: 1,
		DayOfMonth:     1,
		MonthlyTime:    "00:00",
	}, v)

	v = Settings{StationID: 4, Schedule: Daily{IntervalDays: 2, TimeOfDay: "06:15"}, Enabled: true}.View()
	assert.Equal(t, models.ModeDaily, v.Mode)
	assert.Equal(t, 2, v.IntervalDays)
	assert.Equal(t, "06:15", v.DailyTime)
	assert.Equal(t, "00:00", v.MonthlyTime)
	assert.True(t, v.Enabled)
}

func TestFormForRoundTrip(t *testing.T) {
	s := Settings{StationID: 9, Schedule: Monthly{IntervalMonths: 1, DayOfMonth: 28, TimeOfDay: "05:45"}, Enabled: true}
	got, err := FormFor(s).Validate()
	require.NoError(t, err)
	assert.Equal(t, s, got)

	values := FormFor(s).Values()
	assert.Equal(t, ActionSave, values["action"])
	assert.Equal(t, "", values["interval_hours"])
}

func TestClientSave(t *testing.T) {
	common.SetTestLoggerNop()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, ActionSave, r.PostForm.Get("action"))
		assert.Equal(t, "monthly", r.PostForm.Get("mode"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Settings saved successfully."}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/dashboard", 0)

	t.Run("monthly missing fields never reaches the network", func(t *testing.T) {
		for _, form := range []Form{
			{StationID: "1", Mode: "monthly", DayOfMonth: "1", TimeOfDay: "08:00", Enabled: "1"},
			{StationID: "1", Mode: "monthly", IntervalMonths: "1", TimeOfDay: "08:00", Enabled: "1"},
			{StationID: "1", Mode: "monthly", IntervalMonths: "1", DayOfMonth: "1", Enabled: "1"},
		} {
			res, err := client.Save(context.Background(), form)
			assert.ErrorIs(t, err, ErrMissingFields)
			assert.False(t, res.Success)
			assert.Equal(t, MessageMissingFields, res.Message)
		}
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("no station never reaches the network", func(t *testing.T) {
		res, err := client.Save(context.Background(), Form{Mode: "hourly", IntervalHours: "1", Enabled: "1"})
		assert.ErrorIs(t, err, ErrNoStation)
		assert.Equal(t, MessageNoStation, res.Message)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("complete monthly form is sent", func(t *testing.T) {
		res, err := client.Save(context.Background(), Form{
			StationID: "1", Mode: "monthly", IntervalMonths: "1", DayOfMonth: "1", TimeOfDay: "08:00", Enabled: "1",
		})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, MessageSaved, res.Message)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestClientSaveSurfacesServerFailure(t *testing.T) {
	common.SetTestLoggerNop()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"DB error: disk full"}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, 0).Save(context.Background(), Form{StationID: "1", Mode: "hourly", IntervalHours: "1"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "DB error: disk full", res.Message)
}

func TestClientSaveNetworkError(t *testing.T) {
	common.SetTestLoggerNop()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res, err := NewClient(url, 0).Save(context.Background(), Form{StationID: "1", Mode: "hourly", IntervalHours: "1"})
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, MessageNetworkError, res.Message)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestClientSaveUndecodableResponse(t *testing.T) {
	common.SetTestLoggerNop()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html><body>502 Bad Gateway</body></html>`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, 0).Save(context.Background(), Form{StationID: "1", Mode: "hourly", IntervalHours: "1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadResponse)
	assert.False(t, errors.Is(err, ErrNetwork))

	var rerr *ResponseError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, http.StatusBadGateway, rerr.StatusCode)
	assert.False(t, res.Success)
	assert.Equal(t, "Unexpected response from dashboard. Status: 502", res.Message)
}
