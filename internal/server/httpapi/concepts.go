package httpapi

import (
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

func (s *HTTPServer) listConcepts(c *fiber.Ctx) error {
	list, err := s.services.Concepts.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]conceptResponse, 0, len(list))
	for _, cn := range list {
		out = append(out, newConceptResponse(cn))
	}
	return c.JSON(out)
}

func (s *HTTPServer) createConcept(c *fiber.Ctx) error {
	var req conceptRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	cn, err := s.services.Concepts.Create(c.UserContext(), req.model())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newConceptResponse(cn))
}

func (s *HTTPServer) getConcept(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	cn, err := s.services.Concepts.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(newConceptResponse(cn))
}

func (s *HTTPServer) updateConcept(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req conceptRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	current, err := s.services.Concepts.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	next := req.model()
	next.ID = current.ID
	next.UUID = current.UUID
	next.CreatedAt = current.CreatedAt

	cn, err := s.services.Concepts.Update(c.UserContext(), next)
	if err != nil {
		return err
	}
	return c.JSON(newConceptResponse(cn))
}

func (s *HTTPServer) deleteConcept(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := s.services.Concepts.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *HTTPServer) conceptAbstractElements(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	list, err := s.services.Concepts.AbstractElements(c.UserContext(), id)
	if err != nil {
		return err
	}
	out := make([]abstractElementResponse, 0, len(list))
	for _, e := range list {
		out = append(out, newAbstractElementResponse(e))
	}
	return c.JSON(out)
}

func (s *HTTPServer) createAbstractElement(c *fiber.Ctx) error {
	var req abstractElementRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	e, err := s.services.Concepts.CreateAbstractElement(c.UserContext(), &models.AbstractElement{
		ConceptID:     req.ConceptID,
		ElementFields: req.model(),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newAbstractElementResponse(e))
}

func (s *HTTPServer) updateAbstractElement(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req elementFields
	if err := s.bind(c, &req); err != nil {
		return err
	}
	e, err := s.services.Concepts.UpdateAbstractElement(c.UserContext(), &models.AbstractElement{
		ID:            id,
		ElementFields: req.model(),
	})
	if err != nil {
		return err
	}
	return c.JSON(newAbstractElementResponse(e))
}

func (s *HTTPServer) deleteAbstractElement(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := s.services.Concepts.DeleteAbstractElement(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
