// internal/flow/prompts.go
package flow

// Bot copy and option lists for the intake dialogue. All user-facing text is
// Turkish; option matching is exact string comparison against these lists.

const (
	PromptWelcome = "Merhaba! AcadeZone Eğitim Asistanı'na hoş geldiniz. " +
		"Size en uygun eğitim programlarını bulmak için yardımcı olabilirim. " +
		"Başlamak için adınızı öğrenebilir miyim?"

	promptSurname         = "Teşekkürler! Soyadınızı da öğrenebilir miyim?"
	promptEmail           = "Teşekkürler! E-posta adresinizi alabilir miyim?"
	promptEmailInvalid    = "Geçerli bir e-posta adresi giriniz."
	promptPhone           = "Teşekkürler! Telefon numaranızı da alabilir miyim?"
	promptPhoneInvalid    = "Geçerli bir telefon numarası giriniz (10-11 rakam)."
	promptDepartment      = "Teşekkürler! Hangi bölümle ilgileniyorsunuz?"
	promptDepartmentAgain = "Hangi bölümle ilgileniyorsunuz?"
	promptLevel           = "Hangi seviyede eğitim arıyorsunuz?"
	promptTime            = "Eğitim için ne kadar zaman ayırabilirsiniz?"

	promptSearching = "Teşekkürler! Verdiğiniz bilgilere göre size uygun " +
		"eğitim programlarını buluyorum..."
	promptNoResults = "Aradığınız kriterlere uygun eğitim programı bulamadım. " +
		"Kriterlerinizi değiştirmek ister misiniz?"
	promptRecommendationError = "Önerileri alırken bir sorun oluştu. " +
		"Lütfen daha sonra tekrar deneyin."

	promptAnythingElse = "Anladım. Başka bir konuda yardımcı olabilir miyim?"
	promptInfoConfirm  = "Detaylı bilgi için öğrenci işleri birimimiz sizinle " +
		"iletişime geçecektir. Teşekkür ederiz!"
	promptApplyRedirect = "Başvuru formuna yönlendiriliyorsunuz..."
	promptGoodbye       = "Teşekkür ederiz! İhtiyacınız olduğunda tekrar yardımcı " +
		"olmaktan memnuniyet duyarız. İyi günler dileriz!"

	promptNotUnderstood = "Anlamadım. Lütfen tekrar deneyin."
)

// Recognized option answers.
const (
	optionYes        = "Evet"
	optionNo         = "Hayır"
	optionInfo       = "Detaylı bilgi almak istiyorum"
	optionApply      = "Başvuru yapmak istiyorum"
	optionAskAnother = "Evet, farklı bir bölüm hakkında soru sormak istiyorum"
	optionNoThanks   = "Hayır, teşekkürler"
)

var (
	// DepartmentOptions is a suggestion list: the department step also
	// accepts free text, unknown departments are created on save.
	DepartmentOptions = []string{
		"Beslenme ve Diyetetik",
		"Biyomedikal Mühendisliği",
		"Bilgisayar Mühendisliği",
		"Psikoloji",
		"Diğer",
	}

	InterestOptions = []string{
		"Akademik Kariyer",
		"Sertifika Programları",
		"Uzaktan Eğitim",
		"Yüz Yüze Eğitim",
		"Hepsi",
	}

	LevelOptions = []string{
		"Başlangıç",
		"Orta",
		"İleri",
		"Hepsi",
	}

	TimeOptions = []string{
		"Haftada 2-4 saat",
		"Haftada 5-10 saat",
		"Haftada 10+ saat",
		"Esnek",
	}

	NoResultsOptions      = []string{optionYes, optionNo}
	RecommendationOptions = []string{optionInfo, optionApply}
	EndOptions            = []string{optionAskAnother, optionNoThanks}
)

func optionMatches(options []string, input string) bool {
	for _, opt := range options {
		if opt == input {
			return true
		}
	}
	return false
}
