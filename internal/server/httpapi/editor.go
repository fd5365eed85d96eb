package httpapi

import (
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

// --- pages ---

func (s *HTTPServer) createPage(c *fiber.Ctx) error {
	var req pageRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	pg, err := s.services.Pages.Create(c.UserContext(), owner(c), req.ProcedureID, req.DisplayIndex)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newPageResponse(pg))
}

func (s *HTTPServer) updatePage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req pagePatchRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	pg, err := s.services.Pages.Move(c.UserContext(), owner(c), id, req.DisplayIndex)
	if err != nil {
		return err
	}
	return c.JSON(newPageResponse(pg))
}

func (s *HTTPServer) deletePage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := s.services.Pages.Delete(c.UserContext(), owner(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- elements ---

func (s *HTTPServer) createElement(c *fiber.Ctx) error {
	var req elementRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	e, err := s.services.Elements.Create(c.UserContext(), owner(c), &models.Element{
		PageID:        req.PageID,
		ConceptID:     req.ConceptID,
		ElementFields: req.model(),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newElementResponse(e))
}

func (s *HTTPServer) updateElement(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req elementPatchRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	e, err := s.services.Elements.Update(c.UserContext(), owner(c), &models.Element{
		ID:            id,
		ConceptID:     req.ConceptID,
		ElementFields: req.model(),
	})
	if err != nil {
		return err
	}
	return c.JSON(newElementResponse(e))
}

func (s *HTTPServer) deleteElement(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := s.services.Elements.Delete(c.UserContext(), owner(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- show-ifs ---

func (s *HTTPServer) createShowIf(c *fiber.Ctx) error {
	var req showIfRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	si, err := s.services.ShowIfs.Create(c.UserContext(), owner(c), req.PageID, req.Conditions)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newShowIfResponse(si))
}

func (s *HTTPServer) updateShowIf(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req showIfPatchRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	si, err := s.services.ShowIfs.Update(c.UserContext(), owner(c), id, req.Conditions)
	if err != nil {
		return err
	}
	return c.JSON(newShowIfResponse(si))
}

func (s *HTTPServer) deleteShowIf(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := s.services.ShowIfs.Delete(c.UserContext(), owner(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
