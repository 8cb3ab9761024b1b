package server

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
)

func (s *Server) postInitiateAdminTransfer(c echo.Context) error {
	var req adminInitiateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := s.vault.InitiateAdminTransfer(c.Request().Context(),
		common.HexToAddress(req.Caller), common.HexToAddress(req.Target))
	if err != nil {
		return s.fail(c, "initiate_admin_transfer", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) postAcceptAdminTransfer(c echo.Context) error {
	var req adminAcceptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := s.vault.AcceptAdminTransfer(c.Request().Context(),
		common.HexToAddress(req.OriginalAdmin), common.HexToAddress(req.Caller))
	if err != nil {
		return s.fail(c, "accept_admin_transfer", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) postCancelAdminTransfer(c echo.Context) error {
	var req adminCancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := s.vault.CancelAdminTransfer(c.Request().Context(), common.HexToAddress(req.Caller)); err != nil {
		return s.fail(c, "cancel_admin_transfer", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getPendingAdminTransfer(c echo.Context) error {
	admin, err := addressParam(c.QueryParam("admin"), "admin")
	if err != nil {
		return err
	}

	resp := pendingTransferResponse{Admin: admin.Hex()}
	if target, ok := s.vault.PendingAdminTransfer(admin); ok {
		resp.Pending = true
		resp.Target = target.Hex()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) getAssets(c echo.Context) error {
	return c.JSON(http.StatusOK, addressesResponse{Addresses: hexAddresses(s.vault.Assets())})
}

func (s *Server) postAsset(c echo.Context) error {
	var req assetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := s.vault.AddAsset(c.Request().Context(),
		common.HexToAddress(req.Caller), common.HexToAddress(req.Asset))
	if err != nil {
		return s.fail(c, "add_asset", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) putAssets(c echo.Context) error {
	var req assetsReplaceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := s.vault.ReplaceAssets(c.Request().Context(),
		common.HexToAddress(req.Caller), toAddresses(req.Assets))
	if err != nil {
		return s.fail(c, "replace_assets", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deleteAsset(c echo.Context) error {
	asset, err := addressParam(c.Param("address"), "asset")
	if err != nil {
		return err
	}
	caller, err := addressParam(c.QueryParam("caller"), "caller")
	if err != nil {
		return err
	}

	if err := s.vault.RemoveAsset(c.Request().Context(), caller, asset); err != nil {
		return s.fail(c, "remove_asset", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getConfig(c echo.Context) error {
	view := s.vault.Config()
	variant := "list"
	if s.merkleVault != nil {
		variant = "merkle"
	}
	return c.JSON(http.StatusOK, configResponse{
		Variant:    variant,
		Prefix:     view.Prefix,
		ParamOwner: view.ParamOwner.Hex(),
		Version:    s.version,
		Commit:     s.commit,
	})
}

func (s *Server) putPrefix(c echo.Context) error {
	var req prefixRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := s.vault.SetPrefix(c.Request().Context(), common.HexToAddress(req.Caller), req.Prefix); err != nil {
		return s.fail(c, "set_prefix", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) putParamOwner(c echo.Context) error {
	var req paramOwnerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := s.vault.SetParamOwner(c.Request().Context(),
		common.HexToAddress(req.Caller), common.HexToAddress(req.Owner))
	if err != nil {
		return s.fail(c, "set_param_owner", err)
	}
	return c.NoContent(http.StatusNoContent)
}
