package server

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
)

const (
	kindTrusted = "trusted"
	kindGeneral = "general"
)

func listKindParam(c echo.Context) (string, error) {
	kind := c.Param("kind")
	if kind != kindTrusted && kind != kindGeneral {
		return "", echo.NewHTTPError(http.StatusNotFound, "unknown list kind")
	}
	return kind, nil
}

func (s *Server) getList(c echo.Context) error {
	kind, err := listKindParam(c)
	if err != nil {
		return err
	}

	var addrs []common.Address
	if kind == kindTrusted {
		addrs = s.listVault.TrustedAddresses()
	} else {
		addrs = s.listVault.GeneralAddresses()
	}
	return c.JSON(http.StatusOK, listResponse{Kind: kind, Addresses: hexAddresses(addrs)})
}

func (s *Server) postListEntry(c echo.Context) error {
	kind, err := listKindParam(c)
	if err != nil {
		return err
	}

	var req listEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	caller := common.HexToAddress(req.Caller)
	addr := common.HexToAddress(req.Address)

	add := s.listVault.AddGeneral
	if kind == kindTrusted {
		add = s.listVault.AddTrusted
	}
	if err := add(c.Request().Context(), caller, addr); err != nil {
		return s.fail(c, "add_"+kind, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) putList(c echo.Context) error {
	kind, err := listKindParam(c)
	if err != nil {
		return err
	}

	var req listReplaceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	replace := s.listVault.ReplaceGeneral
	if kind == kindTrusted {
		replace = s.listVault.ReplaceTrusted
	}
	if err := replace(c.Request().Context(), common.HexToAddress(req.Caller), toAddresses(req.Addresses)); err != nil {
		return s.fail(c, "replace_"+kind, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deleteListEntry(c echo.Context) error {
	kind, err := listKindParam(c)
	if err != nil {
		return err
	}
	addr, err := addressParam(c.Param("address"), "list entry")
	if err != nil {
		return err
	}
	caller, err := addressParam(c.QueryParam("caller"), "caller")
	if err != nil {
		return err
	}

	remove := s.listVault.RemoveGeneral
	if kind == kindTrusted {
		remove = s.listVault.RemoveTrusted
	}
	if err := remove(c.Request().Context(), caller, addr); err != nil {
		return s.fail(c, "remove_"+kind, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getRoot(c echo.Context) error {
	kind, err := listKindParam(c)
	if err != nil {
		return err
	}

	root := s.merkleVault.GeneralRoot()
	if kind == kindTrusted {
		root = s.merkleVault.TrustedRoot()
	}
	return c.JSON(http.StatusOK, rootResponse{Kind: kind, Root: root.Hex()})
}

func (s *Server) putRoot(c echo.Context) error {
	kind, err := listKindParam(c)
	if err != nil {
		return err
	}

	var req rootUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	set := s.merkleVault.SetGeneralRoot
	if kind == kindTrusted {
		set = s.merkleVault.SetTrustedRoot
	}
	if err := set(c.Request().Context(), common.HexToAddress(req.Caller), common.HexToHash(req.Root)); err != nil {
		return s.fail(c, "set_"+kind+"_root", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) postVerifyMembership(c echo.Context) error {
	kind, err := listKindParam(c)
	if err != nil {
		return err
	}

	var req membershipRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	addr := common.HexToAddress(req.Address)
	proof := parseProof(req.Proof)

	var member bool
	if kind == kindTrusted {
		member = s.merkleVault.VerifyTrusted(addr, proof)
	} else {
		member = s.merkleVault.VerifyGeneral(addr, proof)
	}
	return c.JSON(http.StatusOK, membershipResponse{Address: addr.Hex(), Member: member})
}
