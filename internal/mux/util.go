package mux

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"blackjack-server/pkg/blackjack"
	"blackjack-server/pkg/room"

	gmux "github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxRows = 100

func parseRowsOption(r *http.Request, defaultRows int) (int, error) {
	rowsStr := r.FormValue("rows")
	if rowsStr == "" {
		return defaultRows, nil
	}

	val, err := strconv.Atoi(rowsStr)
	if err != nil {
		return 0, err
	}

	if val <= 0 {
		return 0, errors.New("rows must be greater than zero")
	}

	if val > maxRows {
		return 0, fmt.Errorf("rows cannot be greater than %d", maxRows)
	}

	return val, nil
}

func roomIDVar(r *http.Request) string {
	return gmux.Vars(r)["id"]
}

func remoteAddr(r *http.Request) string {
	parts := strings.Split(r.RemoteAddr, ":")
	if len(parts) == 1 {
		return parts[0]
	}

	return strings.Join(parts[0:len(parts)-1], ":")
}

func decodeRequest(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" && ct != "text/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("could not write JSON response")
	}
}

type errorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// writeRoomError maps room and game errors to a status code
func writeRoomError(w http.ResponseWriter, err error) {
	var ue room.UserError
	switch {
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrRoomClosed):
		writeJSONError(w, http.StatusNotFound, room.ErrRoomNotFound)
	case errors.Is(err, room.ErrRoomFull), errors.Is(err, blackjack.ErrRoundInProgress):
		writeJSONError(w, http.StatusConflict, err)
	case errors.Is(err, room.ErrNotMember):
		writeJSONError(w, http.StatusForbidden, err)
	case errors.As(err, &ue),
		errors.Is(err, blackjack.ErrNotYourTurn),
		errors.Is(err, blackjack.ErrRoundNotActive),
		errors.Is(err, blackjack.ErrNoParticipants),
		errors.Is(err, blackjack.ErrDeckEmpty):
		writeJSONError(w, http.StatusBadRequest, err)
	default:
		writeJSONError(w, http.StatusInternalServerError, err)
	}
}

func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	var msg string

	if statusCode < 500 && err != nil {
		msg = err.Error()
	} else {
		msg = http.StatusText(statusCode)
	}

	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	writeJSON(w, statusCode, errorResponse{
		Message:    msg,
		StatusCode: statusCode,
	})
}
