package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/contactbook/internal/apperrors"
	"github.com/nkiryanov/contactbook/internal/handlers/render"
	"github.com/nkiryanov/contactbook/internal/handlers/userctx"
	"github.com/nkiryanov/contactbook/internal/logger"
	"github.com/nkiryanov/contactbook/internal/models"
)

const birthdateFormat = "2006-01-02"

type contactRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Birthdate string `json:"birthdate" validate:"required,datetime=2006-01-02"`
}

type contactResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Birthdate string    `json:"birthdate"`
}

func toContactResponse(c models.Contact) contactResponse {
	return contactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Birthdate: c.Birthdate.Format(birthdateFormat),
	}
}

func handleCreateContact(contacts contactsService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[contactRequest](w, r)
		if err != nil {
			return
		}

		// Format already validated, parse can't fail
		birthdate, _ := time.Parse(birthdateFormat, data.Birthdate)

		contact, err := contacts.CreateContact(r.Context(), models.Contact{
			OwnerID:   user.ID,
			FirstName: data.FirstName,
			LastName:  data.LastName,
			Email:     data.Email,
			Birthdate: birthdate,
		})
		if err != nil {
			l.Error("can't create contact", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, toContactResponse(contact), http.StatusCreated)
	})
}

func handleListContacts(contacts contactsService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		list, err := contacts.ListContacts(r.Context(), user.ID)
		if err != nil {
			l.Error("can't list contacts", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]contactResponse, 0, len(list))
		for _, c := range list {
			response = append(response, toContactResponse(c))
		}

		render.JSON(w, response)
	})
}

func handleGetContact(contacts contactsService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		contactID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Contact not found", http.StatusNotFound)
			return
		}

		contact, err := contacts.GetContact(r.Context(), user.ID, contactID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrContactNotFound):
				render.ServiceError(w, "Contact not found", http.StatusNotFound)
			default:
				l.Error("can't get contact", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, toContactResponse(contact))
	})
}

func handleUpdateContact(contacts contactsService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		contactID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Contact not found", http.StatusNotFound)
			return
		}

		data, err := render.BindAndValidate[contactRequest](w, r)
		if err != nil {
			return
		}

		birthdate, _ := time.Parse(birthdateFormat, data.Birthdate)

		contact, err := contacts.UpdateContact(r.Context(), models.Contact{
			ID:        contactID,
			OwnerID:   user.ID,
			FirstName: data.FirstName,
			LastName:  data.LastName,
			Email:     data.Email,
			Birthdate: birthdate,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrContactNotFound):
				render.ServiceError(w, "Contact not found", http.StatusNotFound)
			default:
				l.Error("can't update contact", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, toContactResponse(contact))
	})
}

func handleDeleteContact(contacts contactsService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		contactID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Contact not found", http.StatusNotFound)
			return
		}

		if err := contacts.DeleteContact(r.Context(), user.ID, contactID); err != nil {
			switch {
			case errors.Is(err, apperrors.ErrContactNotFound):
				render.ServiceError(w, "Contact not found", http.StatusNotFound)
			default:
				l.Error("can't delete contact", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func handleUpcomingBirthdays(contacts contactsService, l logger.Logger) http.Handler {
	type upcomingResponse struct {
		ContactID      uuid.UUID `json:"id"`
		FirstName      string    `json:"first_name,omitempty"`
		LastName       string    `json:"last_name,omitempty"`
		NextOccurrence string    `json:"next_occurrence_date"`
		DaysUntil      int       `json:"days_until"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		upcoming, err := contacts.Upcoming(r.Context(), user.ID)
		if err != nil {
			l.Error("can't build upcoming birthdays", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]upcomingResponse, 0, len(upcoming))
		for _, u := range upcoming {
			response = append(response, upcomingResponse{
				ContactID:      u.ContactID,
				FirstName:      u.FirstName,
				LastName:       u.LastName,
				NextOccurrence: u.NextOccurrence.Format(birthdateFormat),
				DaysUntil:      u.DaysUntil,
			})
		}

		render.JSON(w, response)
	})
}
