package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"gorm.io/gorm"

	config "github.com/lawqena/exam_portal/configs"
	"github.com/lawqena/exam_portal/database"
	"github.com/lawqena/exam_portal/exam"
	"github.com/lawqena/exam_portal/models"
)

// GenerateResultCertificate renders the result certificate for a completed
// attempt, converts it to PDF and uploads it. Idempotent per attempt: a
// second request returns the stored certificate.
func GenerateResultCertificate(attempt models.ExamAttempt, user models.User, subject models.Subject) (models.Certificate, error) {
	var existing models.Certificate
	err := database.DB.Where("attempt_id = ?", attempt.ID).First(&existing).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Certificate{}, err
	}

	grade := exam.GradeFor(attempt.Score, attempt.TotalQuestions)
	finalScore := exam.FinalScore20(attempt.Score, attempt.TotalQuestions)

	htmlData, err := renderCertificateHTML(user, subject, attempt, grade, finalScore)
	if err != nil {
		return models.Certificate{}, fmt.Errorf("render certificate html: %w", err)
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		return models.Certificate{}, fmt.Errorf("generate certificate pdf: %w", err)
	}

	uploadURL, err := uploadCertificate(pdfBytes, user.Username, subject.ID.String())
	if err != nil {
		return models.Certificate{}, fmt.Errorf("upload certificate: %w", err)
	}

	certificate := models.Certificate{
		AttemptID:      attempt.ID,
		UserID:         user.ID,
		SubjectID:      subject.ID,
		FinalScore:     finalScore,
		Grade:          string(grade),
		CertificateURL: uploadURL,
		IssuedAt:       time.Now(),
	}
	if err := database.DB.Create(&certificate).Error; err != nil {
		return models.Certificate{}, err
	}

	log.Printf("✅ Issued certificate for attempt %s (student %s, subject %s)", attempt.ID, user.Username, subject.Name)
	return certificate, nil
}

func renderCertificateHTML(user models.User, subject models.Subject, attempt models.ExamAttempt, grade exam.Grade, finalScore float64) (string, error) {
	tmpl, err := template.ParseFiles("templates/certificate.html")
	if err != nil {
		return "", err
	}

	data := struct {
		StudentName    string
		StudentNumber  string
		SubjectName    string
		ExamDate       string
		FinalScore     string
		Grade          string
		CorrectAnswers string
	}{
		StudentName:    user.FullName,
		StudentNumber:  user.Username,
		SubjectName:    subject.Name,
		ExamDate:       attempt.StartTime.Format("2006/01/02"),
		FinalScore:     fmt.Sprintf("%.2f", finalScore),
		Grade:          grade.Arabic(),
		CorrectAnswers: fmt.Sprintf("%d / %d", attempt.Score, attempt.TotalQuestions),
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadCertificate(fileBytes []byte, studentNumber, subjectID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("certificates/%s_%s", studentNumber, subjectID),
		Folder:       "exam_portal_certificates",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}
	return uploadResult.SecureURL, nil
}
