package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/nmorell/weatherfacade/internal/apierr"
	"github.com/nmorell/weatherfacade/internal/upstream"
)

type fakeCall struct {
	endpoint string
	params   url.Values
}

// fakeCaller records every upstream call and answers via respond.
type fakeCaller struct {
	calls   []fakeCall
	respond func(endpoint string, params url.Values) (json.RawMessage, error)
}

func (f *fakeCaller) Get(_ context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	recorded := url.Values{}
	for k, v := range params {
		recorded[k] = append([]string(nil), v...)
	}
	f.calls = append(f.calls, fakeCall{endpoint: endpoint, params: recorded})
	return f.respond(endpoint, params)
}

func currentBody() json.RawMessage {
	return json.RawMessage(`{
		"location": {"name": "Lyon", "country": "France", "localtime": "2024-01-15 14:30"},
		"current": {"temp_c": 4.5, "condition": {"text": "Overcast"}, "wind_kph": 11.2, "humidity": 81}
	}`)
}

func historyBody(name, date string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"location": {"name": %q, "country": "France"},
		"forecast": {"forecastday": [
			{"date": %q, "day": {"avgtemp_c": 10.5, "totalprecip_mm": 1.5, "condition": {"text": "Cloudy"}}}
		]}
	}`, name, date))
}

func forecastBody() json.RawMessage {
	return json.RawMessage(`{
		"location": {"name": "Lyon", "country": "France"},
		"current": {"temp_c": 4.5, "condition": {"text": "Overcast"}},
		"forecast": {"forecastday": [
			{"date": "2024-01-16",
			 "day": {"maxtemp_c": 7.5, "mintemp_c": 1.5, "avgtemp_c": 4.5, "maxwind_kph": 18.5,
			         "totalprecip_mm": 0.5, "avghumidity": 78, "daily_chance_of_rain": 40,
			         "condition": {"text": "Cloudy"}, "uv": 2},
			 "hour": [
				{"time": "2024-01-16 12:00", "temp_c": 6.5, "condition": {"text": "Cloudy"},
				 "wind_kph": 15.5, "humidity": 75, "precip_mm": 0, "chance_of_rain": 20}
			 ]}
		]}
	}`)
}

func fixedNow(t *testing.T) func() time.Time {
	t.Helper()
	now, err := time.Parse("2006-01-02 15:04", "2024-01-15 12:00")
	if err != nil {
		t.Fatalf("parsing fixed time: %v", err)
	}
	return func() time.Time { return now }
}

func assertKind(t *testing.T, err error, kind apierr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var e *apierr.Error
	if !errors.As(err, &e) {
		t.Fatalf("error = %T, want *apierr.Error", err)
	}
	if e.Kind != kind {
		t.Errorf("Kind = %q, want %q", e.Kind, kind)
	}
}

func TestGetCurrent(t *testing.T) {
	fake := &fakeCaller{respond: func(string, url.Values) (json.RawMessage, error) {
		return currentBody(), nil
	}}
	svc := NewWeatherService(fake)

	result, err := svc.GetCurrent(context.Background(), "Lyon")
	if err != nil {
		t.Fatalf("GetCurrent() error = %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("upstream calls = %d, want 1", len(fake.calls))
	}
	call := fake.calls[0]
	if call.endpoint != upstream.EndpointCurrent {
		t.Errorf("endpoint = %q, want %q", call.endpoint, upstream.EndpointCurrent)
	}
	if call.params.Get("q") != "Lyon" {
		t.Errorf("q = %q, want Lyon", call.params.Get("q"))
	}
	if call.params.Get("aqi") != "no" {
		t.Errorf("aqi = %q, want no", call.params.Get("aqi"))
	}
	if result.LocationName != "Lyon" || result.Country != "France" {
		t.Errorf("location = %s/%s, want Lyon/France", result.LocationName, result.Country)
	}
	if result.CurrentTempC != 4.5 || result.Humidity != 81 {
		t.Errorf("temp/humidity = %v/%v, want 4.5/81", result.CurrentTempC, result.Humidity)
	}
}

func TestGetCurrent_EmptyLocation(t *testing.T) {
	for _, location := range []string{"", "   "} {
		t.Run(fmt.Sprintf("location=%q", location), func(t *testing.T) {
			fake := &fakeCaller{respond: func(string, url.Values) (json.RawMessage, error) {
				return currentBody(), nil
			}}
			svc := NewWeatherService(fake)

			_, err := svc.GetCurrent(context.Background(), location)
			assertKind(t, err, apierr.KindInvalidParameter)
			if len(fake.calls) != 0 {
				t.Errorf("upstream calls = %d, want 0", len(fake.calls))
			}
		})
	}
}

func TestGetCurrent_PropagatesUpstreamError(t *testing.T) {
	fake := &fakeCaller{respond: func(string, url.Values) (json.RawMessage, error) {
		return nil, apierr.UpstreamUnavailable()
	}}
	svc := NewWeatherService(fake)

	_, err := svc.GetCurrent(context.Background(), "Lyon")
	assertKind(t, err, apierr.KindUpstreamUnavailable)
}

func TestGetHistory(t *testing.T) {
	fake := &fakeCaller{respond: func(_ string, params url.Values) (json.RawMessage, error) {
		dt := params.Get("dt")
		return historyBody("Lyon-"+dt, dt), nil
	}}
	svc := NewWeatherService(fake)
	svc.now = fixedNow(t)

	result, err := svc.GetHistory(context.Background(), "Lyon", 3)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(fake.calls) != 3 {
		t.Fatalf("upstream calls = %d, want 3", len(fake.calls))
	}

	wantDates := []string{"2024-01-14", "2024-01-13", "2024-01-12"}
	for i, want := range wantDates {
		call := fake.calls[i]
		if call.endpoint != upstream.EndpointHistory {
			t.Errorf("call %d endpoint = %q, want %q", i, call.endpoint, upstream.EndpointHistory)
		}
		if got := call.params.Get("dt"); got != want {
			t.Errorf("call %d dt = %q, want %q", i, got, want)
		}
	}

	if len(result.Days) != 3 {
		t.Fatalf("days = %d, want 3", len(result.Days))
	}
	for i, want := range wantDates {
		if result.Days[i].Date != want {
			t.Errorf("days[%d].date = %q, want %q (most recent first)", i, result.Days[i].Date, want)
		}
	}
	// The outward location comes from the last fetched day's payload.
	if result.LocationName != "Lyon-2024-01-12" {
		t.Errorf("location_name = %q, want Lyon-2024-01-12", result.LocationName)
	}
	if result.Country != "France" {
		t.Errorf("country = %q, want France", result.Country)
	}
}

func TestGetHistory_DaysOutOfRange(t *testing.T) {
	for _, days := range []int{0, -1, 8} {
		t.Run(fmt.Sprintf("days=%d", days), func(t *testing.T) {
			fake := &fakeCaller{respond: func(_ string, params url.Values) (json.RawMessage, error) {
				return historyBody("Lyon", params.Get("dt")), nil
			}}
			svc := NewWeatherService(fake)

			_, err := svc.GetHistory(context.Background(), "Lyon", days)
			assertKind(t, err, apierr.KindInvalidParameter)
			var e *apierr.Error
			errors.As(err, &e)
			if got := e.Details["allowed_range"]; got != "1-7" {
				t.Errorf("allowed_range = %v, want 1-7", got)
			}
			if len(fake.calls) != 0 {
				t.Errorf("upstream calls = %d, want 0", len(fake.calls))
			}
		})
	}
}

func TestGetHistory_FailFast(t *testing.T) {
	fake := &fakeCaller{}
	fake.respond = func(_ string, params url.Values) (json.RawMessage, error) {
		if len(fake.calls) == 2 {
			return nil, apierr.UpstreamUnavailable()
		}
		dt := params.Get("dt")
		return historyBody("Lyon", dt), nil
	}
	svc := NewWeatherService(fake)
	svc.now = fixedNow(t)

	result, err := svc.GetHistory(context.Background(), "Lyon", 5)
	assertKind(t, err, apierr.KindUpstreamUnavailable)
	if len(fake.calls) != 2 {
		t.Errorf("upstream calls = %d, want 2 (stop at the first failure)", len(fake.calls))
	}
	if len(result.Days) != 0 {
		t.Errorf("days = %d, want 0 (no partial result)", len(result.Days))
	}
}

func TestGetForecast(t *testing.T) {
	fake := &fakeCaller{respond: func(string, url.Values) (json.RawMessage, error) {
		return forecastBody(), nil
	}}
	svc := NewWeatherService(fake)

	result, err := svc.GetForecast(context.Background(), "Lyon", 5, false)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("upstream calls = %d, want 1", len(fake.calls))
	}
	call := fake.calls[0]
	if call.endpoint != upstream.EndpointForecast {
		t.Errorf("endpoint = %q, want %q", call.endpoint, upstream.EndpointForecast)
	}
	if call.params.Get("days") != "5" {
		t.Errorf("days = %q, want 5", call.params.Get("days"))
	}
	if call.params.Get("aqi") != "no" || call.params.Get("alerts") != "no" {
		t.Errorf("aqi/alerts = %q/%q, want no/no", call.params.Get("aqi"), call.params.Get("alerts"))
	}

	if len(result.ForecastDays) != 1 {
		t.Fatalf("forecast days = %d, want 1", len(result.ForecastDays))
	}
	day := result.ForecastDays[0]
	if day.HourlyData == nil || len(day.HourlyData) != 0 {
		t.Errorf("hourly_data = %v, want present and empty", day.HourlyData)
	}
}

func TestGetForecast_Hourly(t *testing.T) {
	fake := &fakeCaller{respond: func(string, url.Values) (json.RawMessage, error) {
		return forecastBody(), nil
	}}
	svc := NewWeatherService(fake)

	result, err := svc.GetForecast(context.Background(), "Lyon", 1, true)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	hours := result.ForecastDays[0].HourlyData
	if len(hours) != 1 {
		t.Fatalf("hourly entries = %d, want 1", len(hours))
	}
	if hours[0].Time != "2024-01-16 12:00" || hours[0].ChanceOfRain != 20 {
		t.Errorf("hour = %+v, want time 2024-01-16 12:00 and chance 20", hours[0])
	}
}

func TestGetForecast_DaysOutOfRange(t *testing.T) {
	for _, days := range []int{0, 15} {
		t.Run(fmt.Sprintf("days=%d", days), func(t *testing.T) {
			fake := &fakeCaller{respond: func(string, url.Values) (json.RawMessage, error) {
				return forecastBody(), nil
			}}
			svc := NewWeatherService(fake)

			_, err := svc.GetForecast(context.Background(), "Lyon", days, false)
			assertKind(t, err, apierr.KindInvalidParameter)
			var e *apierr.Error
			errors.As(err, &e)
			if got := e.Details["allowed_range"]; got != "1-14" {
				t.Errorf("allowed_range = %v, want 1-14", got)
			}
			if len(fake.calls) != 0 {
				t.Errorf("upstream calls = %d, want 0", len(fake.calls))
			}
		})
	}
}

func TestGetForecast_MalformedPayload(t *testing.T) {
	fake := &fakeCaller{respond: func(string, url.Values) (json.RawMessage, error) {
		return json.RawMessage(`{"location": {"name": 42}}`), nil
	}}
	svc := NewWeatherService(fake)

	_, err := svc.GetForecast(context.Background(), "Lyon", 3, false)
	assertKind(t, err, apierr.KindInvalidParameter)
}
