package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/forgo/bastion/internal/command"
	"github.com/forgo/bastion/internal/model"
	"github.com/forgo/bastion/internal/service"
)

// newRouter exposes the bank command surface and minimal guild
// administration over HTTP for external dispatchers that speak JSON.
func newRouter(registry *service.Registry, bank *command.Bank) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Bank commands
	mux.HandleFunc("GET /v1/bank/balance", func(w http.ResponseWriter, r *http.Request) {
		actor := r.URL.Query().Get("actor")
		writeResult(w, bank.Balance(r.Context(), actor))
	})

	mux.HandleFunc("GET /v1/bank/logs", func(w http.ResponseWriter, r *http.Request) {
		actor := r.URL.Query().Get("actor")
		writeResult(w, bank.Logs(r.Context(), actor))
	})

	mux.HandleFunc("POST /v1/bank/deposit", func(w http.ResponseWriter, r *http.Request) {
		var req amountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		writeResult(w, bank.Deposit(r.Context(), req.Actor, req.Amount))
	})

	mux.HandleFunc("POST /v1/bank/withdraw", func(w http.ResponseWriter, r *http.Request) {
		var req amountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		writeResult(w, bank.Withdraw(r.Context(), req.Actor, req.Amount))
	})

	// Guild administration
	mux.HandleFunc("POST /v1/guilds", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name   string `json:"name"`
			Prefix string `json:"prefix"`
			Master string `json:"master"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		guild, err := registry.Create(r.Context(), req.Name, req.Prefix, req.Master)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, guildView(guild))
	})

	mux.HandleFunc("GET /v1/guilds/{guildId}", func(w http.ResponseWriter, r *http.Request) {
		guild, err := registry.Snapshot(r.PathValue("guildId"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, guildView(guild))
	})

	mux.HandleFunc("POST /v1/guilds/{guildId}/members", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Player string `json:"player"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if err := registry.AddMember(r.Context(), r.PathValue("guildId"), req.Player); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	})

	mux.HandleFunc("DELETE /v1/guilds/{guildId}/members/{playerId}", func(w http.ResponseWriter, r *http.Request) {
		if err := registry.RemoveMember(r.Context(), r.PathValue("guildId"), r.PathValue("playerId")); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	})

	mux.HandleFunc("POST /v1/guilds/{guildId}/members/{playerId}/promote", func(w http.ResponseWriter, r *http.Request) {
		if err := registry.Promote(r.Context(), r.PathValue("guildId"), r.PathValue("playerId")); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	})

	mux.HandleFunc("POST /v1/guilds/{guildId}/members/{playerId}/demote", func(w http.ResponseWriter, r *http.Request) {
		if err := registry.Demote(r.Context(), r.PathValue("guildId"), r.PathValue("playerId")); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	})

	return mux
}

type amountRequest struct {
	Actor  string  `json:"actor"`
	Amount float64 `json:"amount"`
}

func guildView(g *model.Guild) map[string]interface{} {
	tierRank := 0
	if g.Tier != nil {
		tierRank = g.Tier.Rank
	}
	members := make(map[string]string, len(g.Members))
	for player, role := range g.Members {
		members[player] = string(role)
	}
	return map[string]interface{}{
		"id":         g.ID,
		"name":       g.Name,
		"prefix":     g.Prefix,
		"tier_rank":  tierRank,
		"balance":    model.FormatAmount(g.Balance),
		"members":    members,
		"created_on": g.CreatedOn,
		"updated_on": g.UpdatedOn,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeResult(w http.ResponseWriter, res command.Result) {
	status := http.StatusOK
	if !res.OK {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrGuildNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyInGuild),
		errors.Is(err, service.ErrGuildNameExists):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNotGuildMember),
		errors.Is(err, service.ErrInvalidAmount):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
