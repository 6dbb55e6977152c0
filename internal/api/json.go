package api

import (
	"encoding/json"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/mitchellh/mapstructure"
)

// Envelope states.
const (
	Success string = "success"
	Error   string = "error" // see the message field
)

// GenericRequest is the {"data": {...}} body of write requests. The data
// object is decoded into request structs with mapstructure tags.
type GenericRequest struct {
	Data map[string]any `json:"data"`
}

func NewGenericResponse(status string, message string, data any) gin.H {
	return gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	}
}

func NewErrorResponse(message string) gin.H {
	return NewGenericResponse(Error, message, gin.H{})
}

func NewErrorResponsef(format string, a ...any) gin.H {
	return NewErrorResponse(fmt.Sprintf(format, a...))
}

func (r *GenericRequest) Load(input []byte) error {
	return json.Unmarshal(input, r)
}

func (r *GenericRequest) DecodeDataTo(output any) error {
	return mapstructure.Decode(r.Data, output)
}

// RestJsonResponse documents the success envelope.
type RestJsonResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:""`
	Data    any    `json:"data"`
}

// RestJsonErrorResponse documents the error envelope.
type RestJsonErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Message string `json:"message" example:"Nur genehmigte Protokolle können veröffentlicht werden."`
	Data    any    `json:"data"`
}

type RestJsonLoginResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:""`
	Data    string `json:"data" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}
