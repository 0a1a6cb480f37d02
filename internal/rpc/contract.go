// Package rpc is the wire contract between the door scanner and the server.
//
// There is no generated code: messages travel as google.protobuf.Struct and
// google.protobuf.Empty, and the service descriptor is written by hand. The
// DTOs and Encode/Decode pairs below are the only place where field names
// appear, so both sides cannot drift apart.
package rpc

import (
	"encoding/base64"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "orbitcheck.roster.v1.RosterService"

const (
	MethodPing             = "Ping"
	MethodGetSalt          = "GetSalt"
	MethodLogin            = "Login"
	MethodFetchByEvent     = "FetchByEvent"
	MethodUpdateAttendance = "UpdateAttendance"
)

// FullMethod returns the gRPC path of a RosterService method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PublicMethods do not require an access token.
var PublicMethods = map[string]bool{
	FullMethod(MethodPing):    true,
	FullMethod(MethodGetSalt): true,
	FullMethod(MethodLogin):   true,
}

type SaltRequest struct {
	Username string
}

type SaltResponse struct {
	Salt []byte
}

type LoginRequest struct {
	Username string
	Verifier []byte
}

type LoginResponse struct {
	AccessToken string
	OperatorID  string
}

type FetchRequest struct {
	EventID string
}

type Registration struct {
	RegistrationID string
	QRSignature    string
	OrbitID        string
	EventID        string
	Name           string
	Email          string
	College        string
}

type FetchResponse struct {
	EventID       string
	EventName     string
	Registrations []Registration
}

type AttendanceRequest struct {
	EventID        string
	RegistrationID string
	Attended       bool
	CheckInTime    time.Time
	CheckedInBy    string
}

type AttendanceResponse struct {
	Updated bool
}

func str(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func bytesField(s *structpb.Struct, key string) ([]byte, error) {
	raw := str(s, key)
	if raw == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	return b, nil
}

func EncodeSaltRequest(r SaltRequest) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"username": r.Username})
}

func DecodeSaltRequest(s *structpb.Struct) SaltRequest {
	return SaltRequest{Username: str(s, "username")}
}

func EncodeSaltResponse(r SaltResponse) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"salt": base64.StdEncoding.EncodeToString(r.Salt)})
}

func DecodeSaltResponse(s *structpb.Struct) (SaltResponse, error) {
	salt, err := bytesField(s, "salt")
	return SaltResponse{Salt: salt}, err
}

func EncodeLoginRequest(r LoginRequest) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"username": r.Username,
		"verifier": base64.StdEncoding.EncodeToString(r.Verifier),
	})
}

func DecodeLoginRequest(s *structpb.Struct) (LoginRequest, error) {
	v, err := bytesField(s, "verifier")
	return LoginRequest{Username: str(s, "username"), Verifier: v}, err
}

func EncodeLoginResponse(r LoginResponse) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"access_token": r.AccessToken,
		"operator_id":  r.OperatorID,
	})
}

func DecodeLoginResponse(s *structpb.Struct) LoginResponse {
	return LoginResponse{AccessToken: str(s, "access_token"), OperatorID: str(s, "operator_id")}
}

func EncodeFetchRequest(r FetchRequest) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"event_id": r.EventID})
}

func DecodeFetchRequest(s *structpb.Struct) FetchRequest {
	return FetchRequest{EventID: str(s, "event_id")}
}

func EncodeFetchResponse(r FetchResponse) (*structpb.Struct, error) {
	regs := make([]any, 0, len(r.Registrations))
	for _, reg := range r.Registrations {
		regs = append(regs, map[string]any{
			"registration_id": reg.RegistrationID,
			"qr_signature":    reg.QRSignature,
			"orbit_id":        reg.OrbitID,
			"event_id":        reg.EventID,
			"name":            reg.Name,
			"email":           reg.Email,
			"college":         reg.College,
		})
	}
	return structpb.NewStruct(map[string]any{
		"event_id":      r.EventID,
		"event_name":    r.EventName,
		"registrations": regs,
	})
}

func DecodeFetchResponse(s *structpb.Struct) FetchResponse {
	resp := FetchResponse{EventID: str(s, "event_id"), EventName: str(s, "event_name")}

	values := s.GetFields()["registrations"].GetListValue().GetValues()
	resp.Registrations = make([]Registration, 0, len(values))
	for _, v := range values {
		item := v.GetStructValue()
		resp.Registrations = append(resp.Registrations, Registration{
			RegistrationID: str(item, "registration_id"),
			QRSignature:    str(item, "qr_signature"),
			OrbitID:        str(item, "orbit_id"),
			EventID:        str(item, "event_id"),
			Name:           str(item, "name"),
			Email:          str(item, "email"),
			College:        str(item, "college"),
		})
	}
	return resp
}

func EncodeAttendanceRequest(r AttendanceRequest) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"event_id":          r.EventID,
		"registration_id":   r.RegistrationID,
		"attendance_status": r.Attended,
		"check_in_time":     r.CheckInTime.UTC().Format(time.RFC3339Nano),
		"checked_in_by":     r.CheckedInBy,
	})
}

func DecodeAttendanceRequest(s *structpb.Struct) (AttendanceRequest, error) {
	req := AttendanceRequest{
		EventID:        str(s, "event_id"),
		RegistrationID: str(s, "registration_id"),
		Attended:       s.GetFields()["attendance_status"].GetBoolValue(),
		CheckedInBy:    str(s, "checked_in_by"),
	}
	t, err := time.Parse(time.RFC3339Nano, str(s, "check_in_time"))
	if err != nil {
		return req, fmt.Errorf("field check_in_time: %w", err)
	}
	req.CheckInTime = t
	return req, nil
}

func EncodeAttendanceResponse(r AttendanceResponse) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"updated": r.Updated})
}

func DecodeAttendanceResponse(s *structpb.Struct) AttendanceResponse {
	return AttendanceResponse{Updated: s.GetFields()["updated"].GetBoolValue()}
}
