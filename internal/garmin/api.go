package garmin

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/bnema/garmin-connect-cli/internal/output"
)

// Thin request/response mappings onto the Garmin Connect API. Each method is
// exactly one logical operation through Invoke; the interesting behavior
// (auth, projection, rendering) lives elsewhere.

// DownloadFormat selects the export encoding for activity downloads.
type DownloadFormat string

const (
	DownloadTCX      DownloadFormat = "tcx"
	DownloadGPX      DownloadFormat = "gpx"
	DownloadOriginal DownloadFormat = "original"
	DownloadCSV      DownloadFormat = "csv"
)

func ParseDownloadFormat(s string) (DownloadFormat, error) {
	switch DownloadFormat(s) {
	case DownloadTCX, DownloadGPX, DownloadOriginal, DownloadCSV:
		return DownloadFormat(s), nil
	default:
		return "", fmt.Errorf("unsupported download format %q (expected tcx, gpx, original, or csv)", s)
	}
}

func (c *Client) UserProfile(ctx context.Context) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/userprofile-service/socialProfile", nil)
	})
}

func (c *Client) DailyStats(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/usersummary-service/usersummary/daily", url.Values{"calendarDate": {date}})
	})
}

func (c *Client) UserSummary(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/usersummary-service/usersummary/daily/summary", url.Values{"calendarDate": {date}})
	})
}

func (c *Client) Activities(ctx context.Context, start, limit int) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		query := url.Values{
			"start": {strconv.Itoa(start)},
			"limit": {strconv.Itoa(limit)},
		}
		return call.GetJSON(ctx, "/activitylist-service/activities/search/activities", query)
	})
}

func (c *Client) ActivitiesByDate(ctx context.Context, startDate, endDate, activityType string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		query := url.Values{
			"startDate": {startDate},
			"endDate":   {endDate},
		}
		if activityType != "" {
			query.Set("activityType", activityType)
		}
		return call.GetJSON(ctx, "/activitylist-service/activities/search/activities", query)
	})
}

func (c *Client) Activity(ctx context.Context, activityID int64) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, fmt.Sprintf("/activity-service/activity/%d", activityID), nil)
	})
}

func (c *Client) ActivityDetails(ctx context.Context, activityID int64) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, fmt.Sprintf("/activity-service/activity/%d/details", activityID), nil)
	})
}

func (c *Client) ActivitySplits(ctx context.Context, activityID int64) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, fmt.Sprintf("/activity-service/activity/%d/splits", activityID), nil)
	})
}

func (c *Client) DownloadActivity(ctx context.Context, activityID int64, format DownloadFormat) ([]byte, error) {
	return c.InvokeRaw(ctx, func(ctx context.Context, call *Caller) ([]byte, error) {
		var path string
		switch format {
		case DownloadOriginal:
			path = fmt.Sprintf("/download-service/files/activity/%d", activityID)
		default:
			path = fmt.Sprintf("/download-service/export/%s/activity/%d", format, activityID)
		}
		return call.GetBytes(ctx, path, nil)
	})
}

func (c *Client) UploadActivity(ctx context.Context, name string, content io.Reader) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.UploadFile(ctx, "/upload-service/upload", name, content)
	})
}

func (c *Client) DeleteActivity(ctx context.Context, activityID int64) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		if err := call.Delete(ctx, fmt.Sprintf("/activity-service/activity/%d", activityID)); err != nil {
			return output.Record{}, err
		}
		return output.Map(
			output.Field{Key: "deleted", Value: output.Bool(true)},
			output.Field{Key: "activityId", Value: output.Int(activityID)},
		), nil
	})
}

func (c *Client) SleepData(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/wellness-service/wellness/dailySleepData", url.Values{"date": {date}})
	})
}

func (c *Client) HeartRates(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/wellness-service/wellness/dailyHeartRate", url.Values{"date": {date}})
	})
}

func (c *Client) Steps(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/wellness-service/wellness/dailySummaryChart", url.Values{"date": {date}})
	})
}

func (c *Client) Stress(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/wellness-service/wellness/dailyStress/"+date, nil)
	})
}

func (c *Client) BodyBattery(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		query := url.Values{"startDate": {date}, "endDate": {date}}
		return call.GetJSON(ctx, "/wellness-service/wellness/bodyBattery/reports/daily", query)
	})
}

func (c *Client) RestingHeartRate(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/userstats-service/wellness/daily/"+date, nil)
	})
}

func (c *Client) TrainingStatus(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/metrics-service/metrics/trainingstatus/aggregated/"+date, nil)
	})
}

func (c *Client) TrainingReadiness(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/metrics-service/metrics/trainingreadiness/"+date, nil)
	})
}

func (c *Client) MaxMetrics(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, fmt.Sprintf("/metrics-service/metrics/maxmet/daily/%s/%s", date, date), nil)
	})
}

func (c *Client) LactateThreshold(ctx context.Context) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/biometric-service/biometric/latest/lactateThreshold", nil)
	})
}

func (c *Client) EnduranceScore(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/metrics-service/metrics/endurancescore", url.Values{"calendarDate": {date}})
	})
}

func (c *Client) HillScore(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/metrics-service/metrics/hillscore", url.Values{"calendarDate": {date}})
	})
}

func (c *Client) HRVData(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/hrv-service/hrv/"+date, nil)
	})
}

func (c *Client) FitnessAge(ctx context.Context) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/fitnessage-service/fitnessage", nil)
	})
}

func (c *Client) WeighIns(ctx context.Context, startDate, endDate string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		path := fmt.Sprintf("/weight-service/weight/range/%s/%s", startDate, endDate)
		return call.GetJSON(ctx, path, url.Values{"includeAll": {"true"}})
	})
}

func (c *Client) DailyWeighIns(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		return call.GetJSON(ctx, "/weight-service/weight/dayview/"+date, nil)
	})
}

func (c *Client) BodyComposition(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		query := url.Values{"startDate": {date}, "endDate": {date}}
		return call.GetJSON(ctx, "/weight-service/weight/daterangesnapshot", query)
	})
}

func (c *Client) AddWeighIn(ctx context.Context, weight float64, unitKey, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		body := map[string]any{
			"value":         weight,
			"unitKey":       unitKey,
			"dateTimestamp": date + "T12:00:00.00",
			"gmtTimestamp":  date + "T12:00:00.00",
		}
		return call.PostJSON(ctx, "/weight-service/user-weight", body)
	})
}

func (c *Client) DeleteWeighIn(ctx context.Context, date string, pk int64) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		path := fmt.Sprintf("/weight-service/weight/%s/byversion/%d", date, pk)
		if err := call.Delete(ctx, path); err != nil {
			return output.Record{}, err
		}
		return output.Map(
			output.Field{Key: "deleted", Value: output.Bool(true)},
			output.Field{Key: "samplePk", Value: output.Int(pk)},
		), nil
	})
}

func (c *Client) DeleteDailyWeighIns(ctx context.Context, date string) (output.Record, error) {
	return c.Invoke(ctx, func(ctx context.Context, call *Caller) (output.Record, error) {
		if err := call.Delete(ctx, "/weight-service/weight/allsamples/"+date); err != nil {
			return output.Record{}, err
		}
		return output.Map(
			output.Field{Key: "deleted", Value: output.Bool(true)},
			output.Field{Key: "date", Value: output.String(date)},
		), nil
	})
}
