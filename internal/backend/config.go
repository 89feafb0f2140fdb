package backend

import (
	"errors"
	"fmt"

	"finsage/internal/config"
)

// FromAppConfig picks the backend settings out of the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	bt, err := ParseType(appConfig.DataBackend)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Type:                bt,
		SQLiteDBPath:        appConfig.SQLiteDBPath,
		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleIncomeSheet:   appConfig.GoogleIncomeSheet,
		GoogleExpenseSheet:  appConfig.GoogleExpenseSheet,
		Location:            appConfig.Location(),
	}, nil
}

// Validate reports every setting the selected backend is missing.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	var errs []error
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			errs = append(errs, errors.New("sqlite backend: database path is required"))
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, errors.New("sheets backend: spreadsheet ID is required"))
		}
		if c.GoogleIncomeSheet == "" || c.GoogleExpenseSheet == "" {
			errs = append(errs, errors.New("sheets backend: income and expense sheet names are required"))
		}
	}
	return errors.Join(errs...)
}
