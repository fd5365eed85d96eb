package httpapi

import (
	"errors"

	"github.com/dmitrijs2005/procedurebuilder/internal/server/export"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

func (s *HTTPServer) listProcedures(c *fiber.Ctx) error {
	list, err := s.services.Procedures.List(c.UserContext(), owner(c))
	if err != nil {
		return err
	}
	return c.JSON(newProcedureList(list))
}

func (s *HTTPServer) createProcedure(c *fiber.Ctx) error {
	var req procedureRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	p, err := s.services.Procedures.Create(c.UserContext(), owner(c), req.model())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newProcedureResponse(p))
}

func (s *HTTPServer) getProcedure(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := s.services.Procedures.Get(c.UserContext(), owner(c), id)
	if err != nil {
		return err
	}
	return c.JSON(newProcedureResponse(p))
}

func (s *HTTPServer) updateProcedure(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req procedurePatchRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	p, err := s.services.Procedures.Update(c.UserContext(), owner(c), id, req.Title, req.Author)
	if err != nil {
		return err
	}
	return c.JSON(newProcedureResponse(p))
}

func (s *HTTPServer) deleteProcedure(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := s.services.Procedures.Delete(c.UserContext(), owner(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *HTTPServer) procedureVersions(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	list, err := s.services.Procedures.Versions(c.UserContext(), owner(c), id)
	if err != nil {
		return err
	}
	return c.JSON(newProcedureList(list))
}

// validateProcedure reports structural problems with 200; it never fails
// because of them.
func (s *HTTPServer) validateProcedure(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	err = s.services.Procedures.Validate(c.UserContext(), owner(c), id)
	var verr *models.ValidationError
	switch {
	case err == nil:
		return c.JSON(validateResponse{Valid: true})
	case errors.As(err, &verr):
		return c.JSON(validationResponse(verr))
	default:
		return err
	}
}

func (s *HTTPServer) reviseProcedure(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := s.services.Procedures.Revise(c.UserContext(), owner(c), id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newProcedureResponse(p))
}

func (s *HTTPServer) deepCopyProcedure(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req deepCopyRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	p, err := s.services.Procedures.DeepCopy(c.UserContext(), owner(c), id, req.LatestVersion)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newProcedureResponse(p))
}

func (s *HTTPServer) publishProcedure(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	res, err := s.services.Publisher.Publish(c.UserContext(), owner(c), id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newPublishResponse(res))
}

func (s *HTTPServer) exportProcedure(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return err
	}
	tree, err := s.services.Procedures.Tree(c.UserContext(), owner(c), id)
	if err != nil {
		return err
	}
	return sendTree(c, tree, format)
}

// fetchProcedure serves a published version to devices that hold the key
// from its push notification.
func (s *HTTPServer) fetchProcedure(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return err
	}
	tree, err := s.services.Publisher.Fetch(c.UserContext(), id, c.Query("key"))
	if err != nil {
		return err
	}
	return sendTree(c, tree, format)
}

func sendTree(c *fiber.Ctx, tree *models.ProcedureTree, format export.Format) error {
	body, err := export.Render(tree, format)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(body)
}

func (s *HTTPServer) procedureGraph(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	tree, err := s.services.Procedures.Tree(c.UserContext(), owner(c), id)
	if err != nil {
		return err
	}
	return c.JSON(export.BuildGraph(tree))
}
