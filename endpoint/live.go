package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ariebrainware/nutritrack/calendar"
	"github.com/ariebrainware/nutritrack/feed"
	"github.com/ariebrainware/nutritrack/model"
	"github.com/ariebrainware/nutritrack/shell"
	"github.com/ariebrainware/nutritrack/store"
	"github.com/ariebrainware/nutritrack/util"
	"github.com/ariebrainware/nutritrack/view"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	snapshotEvent  = "snapshot"
	heartbeatEvery = 25 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// deletedPayload is the last event of a patient stream whose patient was
// removed.
var deletedPayload = gin.H{"deleted": true}

// streamSnapshots relays sub to the client as server-sent events until the
// client leaves, the subscription ends or render reports the last event.
func streamSnapshots[T any](c *gin.Context, sub *feed.Subscription[T], render func(T) (interface{}, bool)) {
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case v, ok := <-sub.C:
			if !ok {
				return false
			}
			payload, more := render(v)
			c.SSEvent(snapshotEvent, payload)
			return more
		}
	})
}

// StreamDashboard godoc
// @Summary      Live dashboard
// @Description  Server-sent "snapshot" events carrying the dashboard after every roster change
// @Tags         Stream
// @Produce      text/event-stream
// @Security     SessionToken
// @Param        search query string false "Name or email filter"
// @Router       /stream/dashboard [get]
func (a *API) StreamDashboard(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	search := c.Query("search")
	sub := a.Patients.WatchRoster(c.Request.Context(), uid)
	streamSnapshots(c, sub, func(patients []model.Patient) (interface{}, bool) {
		return view.BuildDashboard(patients, search, a.now()), true
	})
}

// StreamPatient godoc
// @Summary      Live patient profile
// @Description  Server-sent profile snapshots. A {"deleted": true} snapshot ends the stream.
// @Tags         Stream
// @Produce      text/event-stream
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Param        tab query string false "info, analytics, goals or notes"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /stream/patients/{id} [get]
func (a *API) StreamPatient(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, err := a.Patients.Get(c.Request.Context(), uid, id); err != nil {
		respondStoreError(c, "get patient", patientNotFound, err)
		return
	}
	tab := view.ParseTab(c.Query("tab"))
	sub := a.Patients.WatchPatient(c.Request.Context(), uid, id)
	streamSnapshots(c, sub, func(p *model.Patient) (interface{}, bool) {
		if p == nil {
			return deletedPayload, false
		}
		return view.BuildProfile(p, tab), true
	})
}

func (a *API) watchCalendar(ctx context.Context, uid string, ref time.Time) *feed.Subscription[view.Calendar] {
	topics := []string{store.AppointmentsTopic(uid), store.RosterTopic(uid)}
	return feed.Watch(ctx, a.Hub, topics, func(ctx context.Context) (view.Calendar, bool, error) {
		cal, err := a.loadCalendar(ctx, uid, ref)
		return cal, err == nil, err
	})
}

// StreamCalendar godoc
// @Summary      Live appointment calendar
// @Description  Server-sent calendar snapshots for a month, refreshed on appointment and roster changes
// @Tags         Stream
// @Produce      text/event-stream
// @Security     SessionToken
// @Param        month query string false "YYYY-MM"
// @Failure      400 {object} util.APIResponse "Invalid month"
// @Router       /stream/calendar [get]
func (a *API) StreamCalendar(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	ref, ok := a.monthOrRespond(c)
	if !ok {
		return
	}
	sub := a.watchCalendar(c.Request.Context(), uid, ref)
	streamSnapshots(c, sub, func(cal view.Calendar) (interface{}, bool) {
		return cal, true
	})
}

// wsRequest is a message from a websocket client. Action is "subscribe" or
// "unsubscribe"; a new subscription replaces the previous one.
type wsRequest struct {
	Action    string `json:"action"`
	View      string `json:"view"`
	PatientID string `json:"patientId"`
	Tab       string `json:"tab"`
	Month     string `json:"month"`
	Search    string `json:"search"`
}

// wsMessage is pushed to websocket clients. Type is "snapshot", "deleted",
// "unsubscribed" or "error".
type wsMessage struct {
	View  string      `json:"view,omitempty"`
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var errUnknownAction = errors.New("unknown action")

func (a *API) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(a.CORSOrigins) == 0 || util.Contains("*", a.CORSOrigins) {
				return true
			}
			return util.Contains(origin, a.CORSOrigins)
		},
	}
}

// pump forwards a subscription to send until ctx ends, the subscription
// closes or render reports the last message.
func pump[T any](ctx context.Context, sub *feed.Subscription[T], send func(wsMessage) bool, render func(T) (wsMessage, bool)) {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-sub.C:
			if !ok {
				return
			}
			msg, more := render(v)
			if !send(msg) || !more {
				return
			}
		}
	}
}

// startPump runs pump in the background and returns a function that stops it
// and waits for it to exit.
func startPump[T any](parent context.Context, watch func(context.Context) *feed.Subscription[T], send func(wsMessage) bool, render func(T) (wsMessage, bool)) func() {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	sub := watch(ctx)
	go func() {
		defer close(done)
		pump(ctx, sub, send, render)
	}()
	return func() {
		cancel()
		<-done
	}
}

func (a *API) subscribe(ctx context.Context, uid string, req wsRequest, send func(wsMessage) bool) (func(), error) {
	snapshot := func(data interface{}) wsMessage {
		return wsMessage{View: req.View, Type: snapshotEvent, Data: data}
	}

	switch shell.View(req.View) {
	case shell.Dashboard:
		return startPump(ctx,
			func(ctx context.Context) *feed.Subscription[[]model.Patient] {
				return a.Patients.WatchRoster(ctx, uid)
			},
			send,
			func(patients []model.Patient) (wsMessage, bool) {
				return snapshot(view.BuildDashboard(patients, req.Search, a.now())), true
			}), nil

	case shell.PatientProfile:
		if req.PatientID == "" {
			return nil, errors.New(shell.PatientIDNotFound)
		}
		if _, err := a.Patients.Get(ctx, uid, req.PatientID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, errors.New(patientNotFound)
			}
			return nil, err
		}
		tab := view.ParseTab(req.Tab)
		return startPump(ctx,
			func(ctx context.Context) *feed.Subscription[*model.Patient] {
				return a.Patients.WatchPatient(ctx, uid, req.PatientID)
			},
			send,
			func(p *model.Patient) (wsMessage, bool) {
				if p == nil {
					return wsMessage{View: req.View, Type: "deleted", Data: deletedPayload}, false
				}
				return snapshot(view.BuildProfile(p, tab)), true
			}), nil

	case shell.Appointments:
		ref, err := calendar.ParseMonth(req.Month, a.Location, a.now())
		if err != nil {
			return nil, err
		}
		return startPump(ctx,
			func(ctx context.Context) *feed.Subscription[view.Calendar] {
				return a.watchCalendar(ctx, uid, ref)
			},
			send,
			func(cal view.Calendar) (wsMessage, bool) {
				return snapshot(cal), true
			}), nil
	}
	return nil, shell.ErrUnknownView
}

// Live godoc
// @Summary      Live views over websocket
// @Description  Send {"action":"subscribe","view":"dashboard"} (or patientProfile with patientId, or appointments with month) to receive snapshots; {"action":"unsubscribe"} stops them.
// @Tags         Stream
// @Security     SessionToken
// @Router       /ws [get]
func (a *API) Live(c *gin.Context) {
	uid, ok := uidOrRespond(c)
	if !ok {
		return
	}
	conn, err := a.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("user_id", uid).Msg("websocket upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	out := make(chan wsMessage, 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					_ = conn.Close()
					return
				}
			}
		}
	}()

	send := func(msg wsMessage) bool {
		select {
		case out <- msg:
			return true
		case <-ctx.Done():
			return false
		}
	}

	var stop func()
	stopCurrent := func() {
		if stop != nil {
			stop()
			stop = nil
		}
	}

	for ctx.Err() == nil {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var req wsRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			send(wsMessage{Type: "error", Error: "malformed message"})
			continue
		}

		switch req.Action {
		case "subscribe":
			stopCurrent()
			next, err := a.subscribe(ctx, uid, req, send)
			if err != nil {
				send(wsMessage{View: req.View, Type: "error", Error: err.Error()})
				continue
			}
			stop = next
		case "unsubscribe":
			stopCurrent()
			send(wsMessage{View: req.View, Type: "unsubscribed"})
		default:
			send(wsMessage{Type: "error", Error: errUnknownAction.Error()})
		}
	}

	stopCurrent()
	cancel()
	<-writerDone
	_ = conn.Close()
}
