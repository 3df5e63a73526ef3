// Package dtos - Mappers для конвертации строк процедур в DTOs.
//
// Каждый маппер читает колонки по имени через procedures.Record:
// отсутствующая колонка и NULL дают nil, ошибкой считается только
// значение, которое нельзя сконвертировать.
//
// Pattern: Mapper/Converter
package dtos

import (
	"github.com/Haleralex/userdir/internal/application/procedures"
)

// ============================================
// User Mappers
// ============================================

// ToUserDTO конвертирует строку процедуры в UserDTO.
func ToUserDTO(rec procedures.Record) (UserDTO, error) {
	var u UserDTO

	texts := []struct {
		name string
		dst  **string
	}{
		{"IdUsuario", &u.UserID},
		{"Nombre", &u.FirstName},
		{"Apellido", &u.LastName},
		{"CorreoElectronico", &u.Email},
		{"TelefonoMovil", &u.MobilePhone},
	}
	for _, col := range texts {
		v, err := rec.String(col.name)
		if err != nil {
			return UserDTO{}, err
		}
		*col.dst = v
	}

	ints := []struct {
		name string
		dst  **int
	}{
		{"IdSucursal", &u.BranchID},
		{"IdStatusUsuario", &u.StatusID},
		{"IdRole", &u.RoleID},
	}
	for _, col := range ints {
		v, err := rec.Int(col.name)
		if err != nil {
			return UserDTO{}, err
		}
		*col.dst = v
	}

	createdAt, err := rec.Time("FechaCreacion")
	if err != nil {
		return UserDTO{}, err
	}
	u.CreatedAt = createdAt

	return u, nil
}

// ToUserDTOList конвертирует все строки result set.
func ToUserDTOList(rs procedures.ResultSet) ([]UserDTO, error) {
	result := make([]UserDTO, 0, rs.Len())
	for _, rec := range rs.Records() {
		u, err := ToUserDTO(rec)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, nil
}

// ============================================
// Login Mappers
// ============================================

// ToLoginDataDTO конвертирует строку успешного входа.
// SesionActual попадает в поле Sesion.
func ToLoginDataDTO(rec procedures.Record) (LoginDataDTO, error) {
	var d LoginDataDTO

	columns := []struct {
		name string
		dst  **string
	}{
		{"IdUsuario", &d.UserID},
		{"Nombre", &d.FirstName},
		{"Apellido", &d.LastName},
		{"CorreoElectronico", &d.Email},
		{"SesionActual", &d.Session},
		{"IdSucursal", &d.BranchID},
	}

	for _, col := range columns {
		v, err := rec.String(col.name)
		if err != nil {
			return LoginDataDTO{}, err
		}
		*col.dst = v
	}
	return d, nil
}
