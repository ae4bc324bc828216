package entity

import "reelmate/pkg/validator"

// RegisterValidators adds the mediatype, status and messagemediatype binding tags to gin's validator.
func RegisterValidators() error {
	enums := map[string]func(string) bool{
		"mediatype":        func(s string) bool { return MediaType(s).Valid() },
		"status":           func(s string) bool { return Status(s).Valid() },
		"messagemediatype": func(s string) bool { return MessageMediaType(s).Valid() },
	}
	for tag, valid := range enums {
		if err := validator.RegisterStringEnum(tag, valid); err != nil {
			return err
		}
	}
	return nil
}
