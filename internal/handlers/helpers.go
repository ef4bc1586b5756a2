package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/apperrors"
	"github.com/lynk-app/backend/internal/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// requireUser returns the authenticated user id from the request context
func requireUser(c echo.Context) (primitive.ObjectID, error) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return primitive.NilObjectID, apperrors.New(apperrors.ErrUnauthorized, "User not authenticated")
	}
	return userID, nil
}

// parseObjectID converts a path or body identifier, rejecting malformed input
func parseObjectID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.New(apperrors.ErrValidation, "Invalid "+what)
	}
	return id, nil
}
