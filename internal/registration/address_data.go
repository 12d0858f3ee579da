package registration

// HomeProvince and HomeDistrict locate the school itself; applicants from
// this district pick their prior school from localSchools.
const (
	HomeProvince = "นครสวรรค์"
	HomeDistrict = "หนองบัว"
)

var provinces = []string{
	"กรุงเทพมหานคร", "กระบี่", "กาญจนบุรี", "กาฬสินธุ์", "กำแพงเพชร", "ขอนแก่น", "จันทบุรี",
	"ฉะเชิงเทรา", "ชลบุรี", "ชัยนาท", "ชัยภูมิ", "ชุมพร", "เชียงราย", "เชียงใหม่", "ตรัง", "ตราด",
	"ตาก", "นครนายก", "นครปฐม", "นครพนม", "นครราชสีมา", "นครศรีธรรมราช", "นครสวรรค์", "นนทบุรี",
	"นราธิวาส", "น่าน", "บึงกาฬ", "บุรีรัมย์", "ปทุมธานี", "ประจวบคีรีขันธ์", "ปราจีนบุรี", "ปัตตานี",
	"พระนครศรีอยุธยา", "พะเยา", "พังงา", "พัทลุง", "พิจิตร", "พิษณุโลก", "เพชรบุรี", "เพชรบูรณ์",
	"แพร่", "ภูเก็ต", "มหาสารคาม", "มุกดาหาร", "แม่ฮ่องสอน", "ยโสธร", "ยะลา", "ร้อยเอ็ด", "ระนอง",
	"ระยอง", "ราชบุรี", "ลพบุรี", "ลำปาง", "ลำพูน", "เลย", "ศรีสะเกษ", "สกลนคร", "สงขลา", "สตูล",
	"สมุทรปราการ", "สมุทรสงคราม", "สมุทรสาคร", "สระแก้ว", "สระบุรี", "สิงห์บุรี", "สุโขทัย",
	"สุพรรณบุรี", "สุราษฎร์ธานี", "สุรินทร์", "หนองคาย", "หนองบัวลำภู", "อ่างทอง", "อำนาจเจริญ",
	"อุดรธานี", "อุตรดิตถ์", "อุทัยธานี", "อุบลราชธานี",
}

var districtsByProvince = map[string][]string{
	"นครสวรรค์": {
		"เมืองนครสวรรค์", "โกรกพระ", "ชุมแสง", "หนองบัว", "บรรพตพิสัย", "เก้าเลี้ยว", "ตาคลี",
		"ท่าตะโก", "ไพศาลี", "พยุหะคีรี", "ลาดยาว", "ตากฟ้า", "แม่วงก์", "แม่เปิน", "ชุมตาบง",
	},
	"พิจิตร": {
		"เมืองพิจิตร", "วังทรายพูน", "โพธิ์ประทับช้าง", "ตะพานหิน", "บางมูลนาก", "โพทะเล",
		"สามง่าม", "ทับคล้อ", "สากเหล็ก", "บึงนาราง", "ดงเจริญ", "วชิรบารมี",
	},
	"อุทัยธานี": {
		"เมืองอุทัยธานี", "ทัพทัน", "สว่างอารมณ์", "หนองฉาง", "หนองขาหย่าง", "บ้านไร่", "ลานสัก", "ห้วยคต",
	},
	"ชัยนาท": {
		"เมืองชัยนาท", "มโนรมย์", "วัดสิงห์", "สรรพยา", "สรรคบุรี", "หันคา", "หนองมะโมง", "เนินขาม",
	},
}

var subdistrictsByDistrict = map[string][]string{
	"นครสวรรค์-หนองบัว": {
		"หนองบัว", "หนองกลับ", "ธารทหาร", "ห้วยร่วม", "ห้วยถั่วใต้", "ห้วยถั่วเหนือ", "ห้วยใหญ่",
		"ทุ่งทอง", "วังบ่อ",
	},
	"นครสวรรค์-ชุมแสง": {
		"ชุมแสง", "ทับกฤช", "พิกุล", "เกยไชย", "ท่าไม้", "บางเคียน", "หนองกระเจา", "พันลาน",
		"โคกหม้อ", "ไผ่สิงห์", "ฆะมัง", "ทับกฤชใต้",
	},
	"นครสวรรค์-ไพศาลี": {
		"โคกเดื่อ", "สำโรงชัย", "วังน้ำลัด", "ตะคร้อ", "โพธิ์ประสาท", "วังข่อย", "นาขอม", "ไพศาลี",
	},
	"นครสวรรค์-ท่าตะโก": {
		"ท่าตะโก", "พนมรอก", "หัวถนน", "สายลำโพง", "วังมหากร", "ดอนคา", "ทำนบ", "วังใหญ่",
		"พนมเศษ", "หนองหลวง",
	},
	"พิจิตร-บึงนาราง": {
		"ห้วยแก้ว", "โพธิ์ไทรงาม", "แหลมรัง", "บางลาย", "บึงนาราง",
	},
	"พิจิตร-ทับคล้อ": {
		"ทับคล้อ", "เขาทราย", "เขาเจ็ดลูก", "ท้ายทุ่ง",
	},
}

var localSchools = []School{
	{Name: "โรงเรียนอนุบาลหนองบัว", Subdistrict: "หนองบัว"},
	{Name: "โรงเรียนบ้านหนองกลับ", Subdistrict: "หนองกลับ"},
	{Name: "โรงเรียนวัดธารทหาร", Subdistrict: "ธารทหาร"},
	{Name: "โรงเรียนบ้านห้วยร่วม", Subdistrict: "ห้วยร่วม"},
	{Name: "โรงเรียนบ้านห้วยถั่วใต้", Subdistrict: "ห้วยถั่วใต้"},
	{Name: "โรงเรียนบ้านทุ่งทอง", Subdistrict: "ทุ่งทอง"},
	{Name: "โรงเรียนบ้านวังบ่อ", Subdistrict: "วังบ่อ"},
}
