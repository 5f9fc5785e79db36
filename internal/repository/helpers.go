package repository

import "rentfunnel/internal/storage"

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

// notFoundAs normalizes err and names the missing resource
func notFoundAs(err error, resource, ident string) error {
	err = storage.Normalize(err)
	if storage.IsNotFound(err) {
		return storage.NotFound(resource, ident)
	}
	return err
}
