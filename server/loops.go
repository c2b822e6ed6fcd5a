package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kasuboski/watchlistarr/pkg/logger"
	"github.com/kasuboski/watchlistarr/pkg/manager"
	"go.uber.org/zap"
)

// ListLoops returns the last cycle of every sync loop
func (s Server) ListLoops() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		err := writeResponse(w, http.StatusOK, GenericResponse{Response: s.loops.Status()})
		if err != nil {
			log.Errorw("failed to write response", zap.Error(err))
		}
	}
}

// GetLoop returns the last cycle of one sync loop
func (s Server) GetLoop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())
		lt := manager.LoopType(mux.Vars(r)["loop"])

		status, ok := s.loops.LoopStatus(lt)
		if !ok {
			writeErrorResponse(w, http.StatusNotFound, manager.ErrUnknownLoop)
			return
		}

		err := writeResponse(w, http.StatusOK, GenericResponse{Response: status})
		if err != nil {
			log.Errorw("failed to write response", zap.Error(err))
		}
	}
}

// RunLoop starts one cycle of a sync loop in the background
func (s Server) RunLoop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())
		lt := manager.LoopType(mux.Vars(r)["loop"])

		err := s.loops.RunLoopOnce(r.Context(), lt)
		switch {
		case errors.Is(err, manager.ErrUnknownLoop):
			writeErrorResponse(w, http.StatusNotFound, err)
			return
		case errors.Is(err, manager.ErrLoopRunning), errors.Is(err, manager.ErrLoopDisabled):
			writeErrorResponse(w, http.StatusConflict, err)
			return
		case err != nil:
			log.Errorw("failed to start loop", zap.String("loop", string(lt)), zap.Error(err))
			writeErrorResponse(w, http.StatusInternalServerError, err)
			return
		}

		log.Infow("loop cycle triggered", zap.String("loop", string(lt)))
		writeResponse(w, http.StatusAccepted, GenericResponse{Response: "started"})
	}
}
