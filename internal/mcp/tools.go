package mcp

import (
	"context"
	"time"

	"github.com/claude/ironlog/internal/stats"
	"github.com/mark3labs/mcp-go/mcp"
)

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

// --- Tool definitions ---

var toolGetPeriodStats = mcp.NewTool("get_period_stats",
	mcp.WithDescription("Training statistics for a calendar period: workout counts, volume, completion rate, muscle-group breakdown, top exercises, trends vs. the prior period, streak, and achievements."),
	mcp.WithString("period", mcp.Description("Calendar period. Defaults to 'week'."), mcp.Enum("week", "month", "year")),
	mcp.WithString("date", mcp.Description("Reference date inside the period (ISO 8601 or YYYY-MM-DD). Defaults to today.")),
)

var toolGetAllTimeStats = mcp.NewTool("get_all_time_stats",
	mcp.WithDescription("All-time training statistics: totals, muscle-group breakdown, top exercises, personal bests (heaviest lift, highest volume, most reps), and training start date."),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Personal records per exercise and type (weight, reps, volume), including superseded history rows (is_active=false)."),
	mcp.WithString("exercise", mcp.Description("Filter by exercise ID (e.g. 'barbell-bench-press').")),
)

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("Workout sessions in a date range, including per-exercise completed sets, completion rate, and total volume."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

// --- Tool handlers ---

func (h *handlers) getPeriodStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	period := stats.Period(req.GetString("period", string(stats.PeriodWeek)))

	ref := time.Now()
	if dateStr := req.GetString("date", ""); dateStr != "" {
		var err error
		ref, err = parseFlexTime(dateStr)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
	}

	result, err := h.ds.GetPeriodStats(ctx, h.ownerID, period, ref)
	if err != nil {
		h.log.Error("mcp get_period_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out, err := mcp.NewToolResultJSON(result)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return out, nil
}

func (h *handlers) getAllTimeStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.ds.GetAllTimeStats(ctx, h.ownerID)
	if err != nil {
		h.log.Error("mcp get_all_time_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out, err := mcp.NewToolResultJSON(result)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return out, nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.ds.ListRecords(ctx, h.ownerID, req.GetString("exercise", ""))
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return out, nil
}

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sessions, err := h.ds.SessionsInRange(ctx, h.ownerID, start, end)
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return out, nil
}
