package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type emailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (l *CampusMap) registerHandler(w http.ResponseWriter, r *http.Request) error {
	var reg registration
	if err := l.readBody(w, r, &reg); err != nil {
		return err
	}
	return l.register(w, reg)
}

func (l *CampusMap) checkEmailHandler(w http.ResponseWriter, r *http.Request) error {
	var req emailRequest
	if err := l.readBody(w, r, &req); err != nil {
		return err
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return l.fail(http.StatusBadRequest, "Email address is required.")
	}
	available, err := l.m.emailAvailable(email)
	if err != nil {
		return err
	}
	if !available {
		return l.fail(http.StatusBadRequest, "This email is already in use.")
	}
	return writeJSON(w, http.StatusOK, envelope{Success: true, Message: l.ln.Lang("Email is available.")})
}

// sendCodeHandler mails a verification code to a school address.
func (l *CampusMap) sendCodeHandler(w http.ResponseWriter, r *http.Request) error {
	var req emailRequest
	if err := l.readBody(w, r, &req); err != nil {
		return err
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.HasSuffix(email, l.config.EmailDomain) {
		return &HTTPError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf(l.ln.Lang("Only %s email addresses can be used."), l.config.EmailDomain),
		}
	}
	if err := l.codes.Send(r.Context(), email); err != nil {
		verificationCodes.WithLabelValues("failed").Inc()
		return &HTTPError{
			Err:     err,
			Code:    http.StatusInternalServerError,
			Message: l.ln.Lang("Failed to send the verification code."),
		}
	}
	verificationCodes.WithLabelValues("sent").Inc()
	return writeJSON(w, http.StatusOK, envelope{Success: true, Message: l.ln.Lang("Verification code has been sent to your email.")})
}

func (l *CampusMap) verifyCodeHandler(w http.ResponseWriter, r *http.Request) error {
	var req emailRequest
	if err := l.readBody(w, r, &req); err != nil {
		return err
	}
	email, code := strings.TrimSpace(req.Email), strings.TrimSpace(req.Code)
	if email == "" || code == "" {
		return l.fail(http.StatusBadRequest, "Please enter the email and verification code.")
	}
	err := l.codes.Verify(email, code)
	switch {
	case errors.Is(err, ErrCodeExpired):
		verificationCodes.WithLabelValues("expired").Inc()
		return l.fail(http.StatusBadRequest, "Verification code expired or does not exist.")
	case errors.Is(err, ErrCodeMismatch):
		verificationCodes.WithLabelValues("mismatch").Inc()
		return l.fail(http.StatusBadRequest, "Verification code does not match.")
	case err != nil:
		return err
	}
	verificationCodes.WithLabelValues("verified").Inc()
	return writeJSON(w, http.StatusOK, envelope{Success: true, Message: l.ln.Lang("Email verification completed.")})
}

func (l *CampusMap) sessionHandler(w http.ResponseWriter, r *http.Request) error {
	userID := l.currentUser(r)
	if userID == "" {
		return l.fail(http.StatusUnauthorized, "Not logged in.")
	}
	u, err := l.m.getUser(userID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, envelope{Success: true, User: u})
}

func (l *CampusMap) logoutHandler(w http.ResponseWriter, r *http.Request) error {
	sess, _ := l.sessions.Get(r, sessionName)
	delete(sess.Values, sessionUserID)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, envelope{Success: true, Message: l.ln.Lang("Logged out.")})
}
