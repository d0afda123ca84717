package utils

import (
	"math/rand"
	"time"

	"github.com/linguadesk/backoffice/models"
	"gorm.io/gorm"
)

const paymentReferenceLength = 8
const letterBytes = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateUniquePaymentReference produces the code a student puts on bank
// transfers so the statement importer can match payments to them.
func GenerateUniquePaymentReference(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, paymentReferenceLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		code := string(b)

		var student models.Student
		err := tx.Where("payment_reference = ?", code).First(&student).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return code, nil
			}
			return "", err
		}
	}
}
