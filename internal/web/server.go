// Package web serves the chord explorer UI and its JSON API.
package web

import (
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/satindergrewal/pianochords/internal/chord"
	"github.com/satindergrewal/pianochords/internal/session"
	"github.com/satindergrewal/pianochords/internal/synth"
	"github.com/satindergrewal/pianochords/internal/theory"
)

//go:embed index.html
var IndexHTML []byte

// Options configures a Server. Zero values are usable.
type Options struct {
	AllowedOrigins []string
	PushDebounce   time.Duration

	// Stream and Offer, when set, are mounted at /stream and /offer.
	Stream http.Handler
	Offer  http.Handler

	// Listeners reports connected audio listeners for /api/state.
	Listeners func() any

	Logger *log.Logger
}

type Server struct {
	sess    *session.Session
	hub     *Hub
	router  *mux.Router
	handler http.Handler
	opts    Options
	log     *log.Logger
}

func NewServer(sess *session.Session, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{sess: sess, opts: opts, log: opts.Logger}
	s.hub = NewHub(sess.View, opts.PushDebounce, s.allowOrigin, opts.Logger.WithPrefix("ws"))
	sess.Subscribe(s.hub.Publish)

	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/api/state", s.handleState).Methods("GET")
	r.HandleFunc("/api/catalog", s.handleCatalog).Methods("GET")
	r.HandleFunc("/api/keyboard", s.handleKeyboard).Methods("GET")
	r.HandleFunc("/api/category", s.handleCategory).Methods("POST")
	r.HandleFunc("/api/chord", s.handleChord).Methods("POST")
	r.HandleFunc("/api/root", s.handleRoot).Methods("POST")
	r.HandleFunc("/api/play", s.handlePlay).Methods("POST")
	r.HandleFunc("/api/preview", s.handlePreview).Methods("POST")
	r.Handle("/ws", s.hub).Methods("GET")
	if opts.Stream != nil {
		r.Handle("/stream", opts.Stream).Methods("GET")
	}
	if opts.Offer != nil {
		r.Handle("/offer", opts.Offer).Methods("POST")
	}
	s.router = r

	s.handler = cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) allowOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.opts.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(IndexHTML)
}

type stateResponse struct {
	session.View
	Listeners any `json:"listeners,omitempty"`
	Clients   int `json:"clients"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	resp := stateResponse{View: s.sess.View(), Clients: s.hub.ClientCount()}
	if s.opts.Listeners != nil {
		resp.Listeners = s.opts.Listeners()
	}
	writeJSON(w, http.StatusOK, resp)
}

type catalogChord struct {
	Symbol     string `json:"symbol"`
	BaseSymbol string `json:"baseSymbol"`
	Name       string `json:"name"`
	Intervals  string `json:"intervals"`
}

type catalogCategory struct {
	ID     chord.Category `json:"id"`
	Title  string         `json:"title"`
	Chords []catalogChord `json:"chords"`
}

// handleCatalog lists every category with symbols transposed to the
// current root, plus the root picker labels.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	root := s.sess.View().Root
	cat := s.sess.Catalog()

	var cats []catalogCategory
	for _, c := range chord.Categories() {
		cc := catalogCategory{ID: c, Title: c.Title()}
		for _, shape := range cat.Shapes(c) {
			cc.Chords = append(cc.Chords, catalogChord{
				Symbol:     chord.TransposedSymbol(shape.Symbol, root),
				BaseSymbol: shape.Symbol,
				Name:       chord.CleanName(chord.TransposedName(shape.Name, root)),
				Intervals:  shape.Intervals,
			})
		}
		cats = append(cats, cc)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": cats,
		"roots":      theory.RootLabels(),
	})
}

type keyResponse struct {
	Pitch     string  `json:"pitch"`
	Latin     string  `json:"latin"`
	Black     bool    `json:"black"`
	Active    bool    `json:"active"`
	Frequency float64 `json:"frequency"`
}

func (s *Server) handleKeyboard(w http.ResponseWriter, r *http.Request) {
	d := s.sess.View().Display
	kb := s.sess.Keyboard()
	keys := make([]keyResponse, len(kb))
	for i, k := range kb {
		keys[i] = keyResponse{
			Pitch:     k.Pitch.String(),
			Latin:     k.Pitch.Class.Latin(),
			Black:     k.Black,
			Active:    d.Contains(k.Pitch),
			Frequency: k.Pitch.Frequency(),
		}
	}
	writeJSON(w, http.StatusOK, keys)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.sess.SelectCategory(req.Category))
}

func (s *Server) handleChord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.sess.SelectChord(req.Symbol))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Root string `json:"root"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.sess.SelectRoot(req.Root))
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.sess.PlayChord())
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note string `json:"note"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.sess.PreviewNote(req.Note); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "note": req.Note})
}

// respond writes the current view on success.
func (s *Server) respond(w http.ResponseWriter, err error) {
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sess.View())
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= 500 {
		s.log.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, synth.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, chord.ErrUnknownCategory),
		errors.Is(err, chord.ErrUnknownChord),
		errors.Is(err, theory.ErrUnknownLabel),
		errors.Is(err, theory.ErrInvalidPitch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
