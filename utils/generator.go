package utils

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/lawqena/exam_portal/models"
)

// studentNumberBase seeds the sequence; the first registered student gets
// 2024001.
const studentNumberBase = 2024000

// NextStudentNumber allocates the next sequential student number. Call it
// inside the registration transaction so two concurrent signups cannot
// claim the same number.
func NextStudentNumber(tx *gorm.DB) (string, error) {
	var current int64
	err := tx.Model(&models.User{}).
		Where("role = ?", models.RoleStudent).
		Select("COALESCE(MAX(CAST(username AS BIGINT)), ?)", studentNumberBase).
		Scan(&current).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", current+1), nil
}
