package server

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"github.com/taisys-technologies/voc-vault/internal/domain"
)

func (s *Server) buildTransfer(c echo.Context) (common.Address, domain.TransferRequest, error) {
	var req transferRequest
	if err := c.Bind(&req); err != nil {
		return common.Address{}, domain.TransferRequest{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return common.Address{}, domain.TransferRequest{}, err
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return common.Address{}, domain.TransferRequest{}, err
	}

	transfer := domain.TransferRequest{
		Asset:            common.HexToAddress(req.Asset),
		Destination:      common.HexToAddress(req.Destination),
		Amount:           amount,
		Operation:        req.Operation,
		TrustedProof:     parseProof(req.TrustedProof),
		DestinationProof: parseProof(req.DestinationProof),
	}
	if req.Timestamp != nil {
		transfer.Timestamp = *req.Timestamp
	}
	return common.HexToAddress(req.Caller), transfer, nil
}

func (s *Server) postTransfer(c echo.Context) error {
	caller, transfer, err := s.buildTransfer(c)
	if err != nil {
		return err
	}

	decision, err := s.vault.Transfer(c.Request().Context(), caller, transfer)
	if err != nil {
		return s.fail(c, "transfer", err)
	}
	return c.JSON(http.StatusOK, transferResponse{Route: string(decision.Route), Day: decision.Day})
}

func (s *Server) postAuthorize(c echo.Context) error {
	caller, transfer, err := s.buildTransfer(c)
	if err != nil {
		return err
	}

	decision, err := s.vault.Authorize(c.Request().Context(), caller, transfer)
	if err != nil {
		return s.fail(c, "authorize", err)
	}
	return c.JSON(http.StatusOK, transferResponse{Route: string(decision.Route), Day: decision.Day})
}

func (s *Server) getCapacity(c echo.Context) error {
	destination, err := addressParam(c.QueryParam("destination"), "destination")
	if err != nil {
		return err
	}
	asset, err := addressParam(c.QueryParam("asset"), "asset")
	if err != nil {
		return err
	}
	at, err := atParam(c)
	if err != nil {
		return err
	}

	capacity, err := s.vault.AvailableCapacity(c.Request().Context(), destination, asset, at)
	if err != nil {
		return s.fail(c, "available_capacity", err)
	}

	resp := capacityResponse{
		AmountBounded: capacity.AmountBounded,
		Count:         capacity.Count,
		CountBounded:  capacity.CountBounded,
	}
	if capacity.AmountBounded {
		resp.Amount = capacity.Amount.Dec()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) getUsage(c echo.Context) error {
	destination, err := addressParam(c.QueryParam("destination"), "destination")
	if err != nil {
		return err
	}
	at, err := atParam(c)
	if err != nil {
		return err
	}

	usage := s.vault.UsageAt(destination, at)
	return c.JSON(http.StatusOK, usageResponse{
		Destination: destination.Hex(),
		Day:         domain.Day(at),
		Amount:      usage.Amount.Dec(),
		Count:       usage.Count,
	})
}
