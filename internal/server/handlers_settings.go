package server

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

func (s *Server) putSetting(c echo.Context) error {
	var req settingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	value, err := parseAmount(req.Value)
	if err != nil {
		return err
	}

	err = s.settings.SetUint(c.Request().Context(), common.HexToAddress(req.Caller), common.HexToAddress(req.Owner), req.Key, value)
	if err != nil {
		return s.fail(c, "set_setting", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getSetting(c echo.Context) error {
	owner, err := addressParam(c.Param("owner"), "owner")
	if err != nil {
		return err
	}
	key := c.Param("key")

	value, ok, err := s.settings.CheckUint(c.Request().Context(), owner, key)
	if err != nil {
		return s.fail(c, "get_setting", err)
	}
	resp := settingResponse{Owner: owner.Hex(), Key: key, Exists: ok}
	if ok {
		resp.Value = value.Dec()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) deleteSetting(c echo.Context) error {
	owner, err := addressParam(c.Param("owner"), "owner")
	if err != nil {
		return err
	}
	caller, err := addressParam(c.QueryParam("caller"), "caller")
	if err != nil {
		return err
	}

	err = s.settings.DeleteUint(c.Request().Context(), caller, owner, c.Param("key"))
	if err != nil {
		return s.fail(c, "delete_setting", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getSettings(c echo.Context) error {
	owner, err := addressParam(c.Param("owner"), "owner")
	if err != nil {
		return err
	}

	values, err := s.settings.List(c.Request().Context(), owner)
	if err != nil {
		return s.fail(c, "list_settings", err)
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		out[key] = value.Dec()
	}
	return c.JSON(http.StatusOK, settingsListResponse{Owner: owner.Hex(), Values: out})
}

func (s *Server) getEvents(c echo.Context) error {
	name := c.Param("name")

	limit := defaultEventLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	records, err := s.events.ListEventRecords(c.Request().Context(), name, limit)
	if err != nil {
		return s.fail(c, "list_events", err)
	}
	out := make([]eventRecordResponse, len(records))
	for i, rec := range records {
		out[i] = eventRecordResponse{
			ID:        rec.ID,
			Event:     rec.Event,
			Payload:   rec.Payload,
			Timestamp: rec.Timestamp,
		}
	}
	return c.JSON(http.StatusOK, eventsResponse{Events: out})
}
