package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/income-verify/internal/model"
	"github.com/sells-group/income-verify/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the document upload server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/parse", handleParse(env))
		if env.Store != nil {
			r.Get("/runs", handleListRuns(env.Store))
			r.Get("/runs/{id}", handleGetRun(env.Store))
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// handleParse accepts a multipart upload with a "document" file part and an
// optional "kind" field, runs the pipeline, and returns the assembled record.
func handleParse(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		maxBytes := cfg.Server.MaxUploadMB << 20
		req.Body = http.MaxBytesReader(w, req.Body, maxBytes)

		if err := req.ParseMultipartForm(maxBytes); err != nil {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
			return
		}

		kindName := req.FormValue("kind")
		if kindName == "" {
			kindName = "paystub"
		}
		kind, err := documentKind(kindName)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		file, header, err := req.FormFile("document")
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "document file part is required")
			return
		}
		defer file.Close()

		path, cleanup, err := spoolUpload(file, header.Filename)
		if err != nil {
			zap.L().Error("spool upload failed", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "could not store upload")
			return
		}
		defer cleanup()

		doc, err := env.Parser.Parse(req.Context(), path, kind)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, doc)
		case errors.Is(err, model.ErrUnreadableDocument):
			writeJSONError(w, http.StatusUnprocessableEntity, "document is not a readable PDF")
		case errors.Is(err, model.ErrExtractionFailed):
			writeJSONError(w, http.StatusUnprocessableEntity, "no income data could be extracted")
		default:
			zap.L().Error("parse failed", zap.String("file", header.Filename), zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "extraction failed")
		}
	}
}

func handleListRuns(st *store.SQLiteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		filter := store.RunFilter{
			Kind: model.DocumentKind(req.URL.Query().Get("kind")),
			Path: req.URL.Query().Get("path"),
		}
		runs, err := st.ListRuns(req.Context(), filter)
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "could not list runs")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}

func handleGetRun(st *store.SQLiteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		run, err := st.GetRun(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeJSONError(w, http.StatusNotFound, "run not found")
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

// spoolUpload writes the uploaded file to a temp path the PDF readers can
// open. The caller must invoke cleanup.
func spoolUpload(src io.Reader, name string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "income-verify-upload")
	if err != nil {
		return "", nil, eris.Wrap(err, "create upload dir")
	}
	cleanup := func() { os.RemoveAll(dir) }

	base := filepath.Base(name)
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "document.pdf"
	}
	path := filepath.Join(dir, base)

	dst, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, eris.Wrap(err, "create upload file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		cleanup()
		return "", nil, eris.Wrap(err, "write upload file")
	}
	return path, cleanup, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
