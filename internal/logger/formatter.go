package logger

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"product-api/internal/utils"
)

// Loki push API body.
type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

func buildLogEntry(job string, level slog.Level, message string, attrs []slog.Attr, at time.Time) lokiPush {
	levelName := strings.ToLower(level.String())
	return lokiPush{Streams: []lokiStream{{
		Stream: map[string]string{
			"job":   job,
			"level": levelName,
			"host":  utils.GetHost(),
		},
		Values: [][2]string{{
			strconv.FormatInt(at.UnixNano(), 10),
			buildLogLine(levelName, message, attrs, at),
		}},
	}}}
}

// buildLogLine renders the same fields the local JSON handler writes.
func buildLogLine(level, message string, attrs []slog.Attr, at time.Time) string {
	line := make(map[string]any, len(attrs)+3)
	for _, attr := range attrs {
		line[attr.Key] = attr.Value.Resolve().Any()
	}
	line["time"] = at.Format(time.RFC3339Nano)
	line["level"] = level
	line["msg"] = message

	b, err := json.Marshal(line)
	if err != nil {
		return message
	}
	return string(b)
}
