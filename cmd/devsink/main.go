// Package main runs a local development collector that stands in for the
// event-collection endpoint. Point EVENTS_GRAPH_URL at it to inspect exactly
// what the sender puts on the wire: it accepts the activities POST, decodes
// the custom_events batch, and logs each event.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzip"
)

// sinkEvent mirrors the wire shape of one custom_events entry.
type sinkEvent struct {
	EventName   string   `json:"_eventName"`
	EventID     string   `json:"_eventID"`
	ValueToSum  *float64 `json:"_valueToSum"`
	Currency    string   `json:"fb_currency"`
	ContentType string   `json:"fb_content_type"`
	Content     string   `json:"fb_content"`
	LogTime     int64    `json:"_logTime"`
}

func main() {
	addr := flag.String("addr", ":8655", "listen address")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/{appID}/activities", func(w http.ResponseWriter, req *http.Request) {
		appID := chi.URLParam(req, "appID")

		if req.Header.Get("Content-Encoding") == "gzip" {
			zr, err := gzip.NewReader(req.Body)
			if err != nil {
				http.Error(w, "bad gzip body", http.StatusBadRequest)
				return
			}
			defer zr.Close()
			req.Body = zr
			req.Header.Del("Content-Encoding")
		}

		if err := req.ParseForm(); err != nil {
			http.Error(w, "bad form body", http.StatusBadRequest)
			return
		}

		accessToken := req.PostFormValue("access_token")
		tokenAppID, _, _ := strings.Cut(accessToken, "|")
		if tokenAppID != appID {
			logger.Warn("access token does not match path app id",
				"path_app_id", appID,
				"token_app_id", tokenAppID,
			)
		}

		var batch []sinkEvent
		if err := json.Unmarshal([]byte(req.PostFormValue("custom_events")), &batch); err != nil {
			http.Error(w, "bad custom_events payload", http.StatusBadRequest)
			return
		}

		logger.Info("received event batch",
			"app_id", appID,
			"batch_size", len(batch),
			"advertiser_tracking_enabled", req.PostFormValue("advertiser_tracking_enabled"),
			"advertiser_id", req.PostFormValue("advertiser_id"),
			"extinfo", req.PostFormValue("extinfo"),
		)
		for _, ev := range batch {
			logger.Info("event",
				"name", ev.EventName,
				"id", ev.EventID,
				"value_to_sum", ev.ValueToSum,
				"currency", ev.Currency,
				"content_type", ev.ContentType,
				"content", ev.Content,
				"log_time", ev.LogTime,
			)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	logger.Info("devsink listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		logger.Error("devsink stopped", "error", err)
		os.Exit(1)
	}
}
