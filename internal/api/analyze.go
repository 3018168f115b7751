// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/alvinbaena/pwd-register/pkg/analysis"
	"github.com/gin-gonic/gin"
	"github.com/nbutton23/zxcvbn-go"
	"github.com/rs/zerolog/log"
)

var strengthColors = map[analysis.Strength]string{
	analysis.VeryWeak:   "#ff2d55",
	analysis.Weak:       "#ff9500",
	analysis.Moderate:   "#ffcc00",
	analysis.Strong:     "#34c759",
	analysis.VeryStrong: "#00c7be",
}

// accountApi stands in for the external analysis and account services. It
// keeps the usernames it has accepted, never the passwords.
type accountApi struct {
	mu    sync.Mutex
	users map[string]struct{}
}

func (a *accountApi) analyze(c *gin.Context) {
	var req analysis.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No password provided"})
		return
	}

	c.JSON(http.StatusOK, analyzePassword(req.Password))
}

func (a *accountApi) register(c *gin.Context) {
	var req analysis.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, analysis.Outcome{Message: "Username and password are required"})
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		c.JSON(http.StatusBadRequest, analysis.Outcome{Message: "Username and password are required"})
		return
	}

	if failed := hints(checkPassword(req.Password)); len(failed) > 0 {
		c.JSON(http.StatusBadRequest, analysis.Outcome{
			Message: "Password does not meet requirements: " + strings.Join(failed, "; "),
		})
		return
	}

	a.mu.Lock()
	_, taken := a.users[username]
	if !taken {
		a.users[username] = struct{}{}
	}
	a.mu.Unlock()

	if taken {
		c.JSON(http.StatusConflict, analysis.Outcome{Message: "Username already taken. Please choose another."})
		return
	}

	log.Info().Str("username", username).Msg("account created")
	c.JSON(http.StatusOK, analysis.Outcome{
		Success: true,
		Message: fmt.Sprintf("Account created successfully for %s!", username),
	})
}

// analyzePassword scores with zxcvbn: the score is the entropy estimate in
// bits, capped at 100.
func analyzePassword(password string) analysis.Result {
	entropy := zxcvbn.PasswordStrength(password, nil)

	score := int(entropy.Entropy)
	if score > 100 {
		score = 100
	}

	strength := strengthFor(score)
	checks := checkPassword(password)
	return analysis.Result{
		Score:       score,
		Strength:    strength,
		Label:       strength.String(),
		Color:       strengthColors[strength],
		CrackTime:   entropy.CrackTimeDisplay,
		Checks:      checks,
		Suggestions: hints(checks),
	}
}

func strengthFor(score int) analysis.Strength {
	switch {
	case score < 30:
		return analysis.VeryWeak
	case score < 50:
		return analysis.Weak
	case score < 70:
		return analysis.Moderate
	case score < 90:
		return analysis.Strong
	}
	return analysis.VeryStrong
}

// RegisterAccountApi mounts POST /analyze and POST /register on group.
func RegisterAccountApi(group *gin.RouterGroup) {
	a := &accountApi{users: make(map[string]struct{})}

	group.POST("/analyze", a.analyze)
	group.POST("/register", a.register)
}
