// Package api provides HTTP handlers for Leadline endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/FinalExpenseIQ/leadline/internal/dialogue"
	"github.com/FinalExpenseIQ/leadline/internal/models"
	"github.com/FinalExpenseIQ/leadline/internal/phone"
	"github.com/FinalExpenseIQ/leadline/internal/store"
)

// smsHandler handles POST /sms, the provider webhook for inbound messages.
//
// The transition is persisted before the reply is sent, and a delivery
// failure never rolls the persisted state back: the provider can retry
// delivery, lost state cannot be recovered. The handler answers 200 for
// everything it processed, and 500 only for storage failures (providers
// retry transient 5xx).
func (s *Server) smsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}

	msg, err := decodeInbound(r)
	if err != nil {
		slog.Warn("smsHandler: failed to decode webhook payload", "error", err)
		inboundMessagesTotal.WithLabelValues("bad_request").Inc()
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if err := msg.Validate(); err != nil {
		slog.Warn("smsHandler: invalid webhook payload", "error", err)
		inboundMessagesTotal.WithLabelValues("bad_request").Inc()
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	slog.Info("smsHandler: inbound message received", "from", msg.From, "body", msg.Body)

	reply, err := s.processInbound(r.Context(), msg.From, msg.Body)
	if err != nil {
		slog.Error("smsHandler: processing failed", "error", err, "from", msg.From)
		inboundMessagesTotal.WithLabelValues("storage_error").Inc()
		// Best-effort apology; the lead should never see a raw error.
		s.sendReply(msg.From, dialogue.MsgProcessingError)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	if reply != "" {
		s.sendReply(msg.From, reply)
	}

	inboundMessagesTotal.WithLabelValues("processed").Inc()
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// decodeInbound accepts the webhook payload as JSON or, failing that, as
// a form post — providers differ on the content type they deliver.
func decodeInbound(r *http.Request) (models.InboundMessage, error) {
	var msg models.InboundMessage

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			return msg, fmt.Errorf("invalid JSON payload: %w", err)
		}
		return msg, nil
	}

	if err := r.ParseForm(); err != nil {
		return msg, fmt.Errorf("invalid form payload: %w", err)
	}
	msg.From = r.FormValue("From")
	msg.Body = r.FormValue("Body")
	return msg, nil
}

// processInbound runs the per-lead critical section: fetch-or-create,
// transition, persist. The returned reply is sent after the lock has
// been released so a slow provider call cannot stall other messages for
// the same number beyond the send itself.
func (s *Server) processInbound(ctx context.Context, from, body string) (string, error) {
	canonical := phone.Normalize(from)

	s.phoneLocks.Lock(canonical)
	defer s.phoneLocks.Unlock(canonical)

	lead, err := s.st.FetchOrCreate(ctx, canonical)
	if err != nil {
		return "", fmt.Errorf("fetch-or-create for %s failed: %w", canonical, err)
	}
	slog.Debug("processInbound: lead loaded", "id", lead.ID, "phone", canonical, "step", lead.Step, "status", lead.Status)

	if lead.AgentTakeover {
		slog.Info("processInbound: agent takeover active, bypassing dialogue", "id", lead.ID, "phone", canonical)
		return dialogue.MsgAgentHolding, nil
	}

	result := dialogue.Transition(*lead, body)
	if !result.Updates.IsEmpty() {
		affected, err := s.st.UpdateLead(ctx, canonical, result.Updates)
		if err != nil {
			return "", fmt.Errorf("persisting transition for %s failed: %w", canonical, err)
		}
		if affected == 0 {
			// The row existed moments ago inside this critical section.
			return "", &store.StorageError{Op: "persist transition", Err: fmt.Errorf("no lead matched %s", canonical)}
		}
		slog.Info("processInbound: lead advanced", "id", lead.ID, "phone", canonical, "from_step", lead.Step, "to_step", result.NextStep)
	} else {
		slog.Debug("processInbound: no state change", "id", lead.ID, "phone", canonical, "step", lead.Step)
	}

	return result.Reply, nil
}

// sendReply delivers outbound text outside any critical section. Delivery
// failures are logged and counted, never propagated: state durability
// takes priority over delivery guarantees.
func (s *Server) sendReply(to string, text string) {
	canonical := phone.Normalize(to)
	if _, err := s.msgService.SendMessage(context.Background(), canonical, text); err != nil {
		outboundSendFailures.Inc()
		slog.Error("sendReply: delivery failed", "error", err, "to", canonical)
	}
}

// startConversationHandler handles POST /start-conversation, the landing
// page opt-in. It creates (or finds) the lead and sends the welcome prompt.
func (s *Server) startConversationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}

	var req models.StartConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("startConversationHandler: invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("startConversationHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	canonical := phone.Normalize(req.PhoneNumber)
	slog.Info("startConversationHandler: opt-in received", "phone", canonical, "source", req.Source)

	s.phoneLocks.Lock(canonical)
	lead, err := s.st.FetchOrCreate(r.Context(), canonical)
	s.phoneLocks.Unlock(canonical)
	if err != nil {
		slog.Error("startConversationHandler: fetch-or-create failed", "error", err, "phone", canonical)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to start conversation"))
		return
	}

	if _, err := s.msgService.SendMessage(r.Context(), canonical, dialogue.MsgWelcome); err != nil {
		outboundSendFailures.Inc()
		slog.Error("startConversationHandler: welcome send failed", "error", err, "phone", canonical)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to start conversation"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Conversation started successfully",
		LeadID:  lead.ID,
	})
}

// listLeadsHandler handles GET /api/leads for the admin dashboard. The
// response is a bare array of leads, newest first.
func (s *Server) listLeadsHandler(w http.ResponseWriter, r *http.Request) {
	leads, err := s.st.ListLeads(r.Context())
	if err != nil {
		slog.Error("listLeadsHandler: failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch leads"))
		return
	}
	if leads == nil {
		leads = []models.Lead{}
	}
	slog.Debug("listLeadsHandler: leads fetched", "count", len(leads))
	writeJSONResponse(w, http.StatusOK, leads)
}

// adminSendHandler handles POST /admin/send-sms, sending arbitrary text
// through the outbound channel without touching conversation state.
func (s *Server) adminSendHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}

	var req models.AdminSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("adminSendHandler: invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("adminSendHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	canonical := phone.Normalize(req.To)
	messageID, err := s.msgService.SendMessage(r.Context(), canonical, req.Message)
	if err != nil {
		outboundSendFailures.Inc()
		slog.Error("adminSendHandler: send failed", "error", err, "to", canonical)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error(err.Error()))
		return
	}

	slog.Info("adminSendHandler: manual message sent", "to", canonical, "messageID", messageID)
	writeJSONResponse(w, http.StatusOK, models.APIResponse{Success: true, MessageID: messageID})
}

// adminTakeoverHandler handles POST /admin/takeover. It suspends the
// automated dialogue for a lead and notifies them that a human has the
// conversation.
func (s *Server) adminTakeoverHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}

	var req models.TakeoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("adminTakeoverHandler: invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("adminTakeoverHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	canonical := phone.Normalize(req.PhoneNumber)
	takeover := true

	s.phoneLocks.Lock(canonical)
	affected, err := s.st.UpdateLead(r.Context(), canonical, models.LeadUpdate{AgentTakeover: &takeover})
	s.phoneLocks.Unlock(canonical)
	if err != nil {
		slog.Error("adminTakeoverHandler: update failed", "error", err, "phone", canonical)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error(err.Error()))
		return
	}
	if affected == 0 {
		slog.Warn("adminTakeoverHandler: no lead for phone", "phone", canonical)
		writeJSONResponse(w, http.StatusNotFound, models.Error("No lead found for phone number"))
		return
	}

	s.sendReply(canonical, dialogue.MsgTakeoverNotice)

	slog.Info("adminTakeoverHandler: takeover activated", "phone", canonical)
	writeJSONResponse(w, http.StatusOK, models.APIResponse{Success: true})
}

// healthHandler handles GET /health for monitoring and load balancing.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"configured": s.msgService.Configured(),
		"mode":       s.msgService.Mode(),
	})
}
