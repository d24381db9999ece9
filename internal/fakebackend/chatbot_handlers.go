package fakebackend

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const chatCookie = "session"

type conversation struct {
	step     string
	name     string
	symptoms []string
}

// Symptoms the scripted triage recognises.
var knownSymptoms = []string{"headache", "high_fever", "cough", "skin_rash", "fatigue"}

func (b *Backend) conversationFor(c echo.Context) (string, *conversation) {
	cookie, err := c.Cookie(chatCookie)
	if err != nil {
		return "", nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cookie.Value, b.conversations[cookie.Value]
}

func (b *Backend) chatStart(c echo.Context) error {
	id, _ := b.conversationFor(c)
	if id == "" {
		id = uuid.NewString()
		c.SetCookie(&http.Cookie{Name: chatCookie, Value: id, Path: "/", HttpOnly: true})
	}
	b.mu.Lock()
	b.conversations[id] = &conversation{step: "greet"}
	b.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]string{"message": "Hello! I'm your HealthCare ChatBot. What's your name?"})
}

// chatRespond walks a short script: name, symptom, days, diagnosis.
func (b *Backend) chatRespond(c echo.Context) error {
	var in struct {
		Input string `json:"input"`
	}
	_ = c.Bind(&in)
	input := strings.TrimSpace(in.Input)

	id, conv := b.conversationFor(c)
	if conv == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Please start the conversation first."})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	switch conv.step {
	case "greet":
		conv.name = input
		conv.step = "symptom"
		return c.JSON(http.StatusOK, map[string]string{
			"message": fmt.Sprintf("Hello, %s! Please tell me the first symptom you're experiencing.", input),
		})
	case "symptom":
		needle := strings.ReplaceAll(strings.ToLower(input), " ", "_")
		for _, s := range knownSymptoms {
			if needle != "" && strings.Contains(s, needle) {
				conv.symptoms = append(conv.symptoms, s)
				conv.step = "days"
				return c.JSON(http.StatusOK, map[string]string{
					"message": fmt.Sprintf("Okay, you've had %s. For how many days?", strings.ReplaceAll(s, "_", " ")),
				})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Sorry, I didn't recognize that symptom. Please try again."})
	case "days":
		if _, err := strconv.Atoi(input); err != nil {
			return c.JSON(http.StatusOK, map[string]string{"message": "Please enter a valid number of days."})
		}
		delete(b.conversations, id)
		return c.JSON(http.StatusOK, map[string]any{
			"message":  "Based on your symptoms, you may have Common Cold.\nTake these measures:\n1) drink vitamin c rich drinks\n2) take rest",
			"finished": true,
		})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Something went wrong."})
}
